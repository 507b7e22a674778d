package config

import (
	"os"
	"time"

	"Receipt-Scan-Backend/internal/api/handlers"
	"Receipt-Scan-Backend/internal/api/presenters"
	"Receipt-Scan-Backend/internal/api/routes"
	"Receipt-Scan-Backend/internal/middleware"
	"Receipt-Scan-Backend/internal/utils"
	"Receipt-Scan-Backend/internal/utils/storage"
	"Receipt-Scan-Backend/pkg/database"
	"Receipt-Scan-Backend/pkg/extraction"
	"Receipt-Scan-Backend/pkg/jwt"
	"Receipt-Scan-Backend/pkg/receipt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func NewApp(pool *database.MongoPool) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		ErrorHandler:      presenters.FiberErrorHandler,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}

	// correlation id: propagate the inbound X-Request-ID or generate one
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${locals:requestid} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()

	// Repository
	receiptRepository := receipt.NewReceiptRepository(pool, utils.GetConfig("MONGODB_COLLECTION"))

	// Service
	jwtService := jwt.NewJWTService()
	extractionService := extraction.NewExtractionService()
	receiptService := receipt.NewReceiptService(
		receiptRepository,
		extractionService,
		s3,
		receipt.NewAllowAllPolicy(),
	)

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		ReceiptHandler: receiptHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
