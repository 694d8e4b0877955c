package middleware

import (
	"errors"
	"log/slog"

	"bloglist/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a service error to its HTTP status code.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler writes every error returned by a handler as {"error": msg}.
// Internal errors are logged and their details are not exposed.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		message := err.Error()

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.Locals("requestid"),
				"error", err.Error(),
			)
			message = "internal server error"
		case status == fiber.StatusForbidden:
			logger.Info("request forbidden", "method", c.Method(), "path", c.Path())
		}

		return c.Status(status).JSON(fiber.Map{"error": message})
	}
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown endpoint"})
}
