package handler

import (
	"errors"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NewErrorHandler builds the central Fiber error handler. Production hides
// internal detail behind a generic message; development includes the error
// and a stack trace.
func NewErrorHandler(env string, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.OriginalURL()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		if env == "production" {
			msg := err.Error()
			if code >= fiber.StatusInternalServerError {
				msg = "Internal Server Error"
			}
			return c.Status(code).JSON(fiber.Map{"error": msg})
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"stack": string(debug.Stack()),
		})
	}
}
