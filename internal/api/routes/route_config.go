package routes

import (
	"Receipt-Scan-Backend/internal/api/handlers"
	"Receipt-Scan-Backend/internal/middleware"
	"Receipt-Scan-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	ReceiptHandler handlers.ReceiptHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Receipts()
	c.GuestRoute()
}

// Receipts attaches auth per route so a wrong-method request gets the
// router's 405 before authentication runs.
func (c *Config) Receipts() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	receipts := c.App.Group("/api/v1/receipts")

	receipts.Post("/process", auth, c.ReceiptHandler.ProcessReceipt)
	receipts.Post("/image", auth, c.ReceiptHandler.UploadReceiptImage)
	receipts.Post("", auth, c.ReceiptHandler.SaveReceipt)
	receipts.Get("/:id", auth, c.ReceiptHandler.LoadReceipt)
	receipts.Put("/:id", auth, c.ReceiptHandler.UpdateReceipt)
	receipts.Post("/:id/share", auth, c.ReceiptHandler.ShareReceipt)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works"})
	})
}
