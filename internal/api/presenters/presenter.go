package presenters

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse flattens the payload next to the success flag so consumers
// read extraction fields and document keys at the top level.
func SuccessResponse(c *fiber.Ctx, status int, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["success"] = true
	return c.Status(status).JSON(data)
}

// FiberErrorHandler turns router-level errors (405, unmatched routes, body
// limits) into the same JSON error shape as handler failures.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return ErrorResponse(c, code, err.Error(), nil)
}

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	errorMessage := message
	if err != nil {
		errorMessage = fmt.Sprintf("%s: %s", message, err.Error())
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   errorMessage,
	})
}
