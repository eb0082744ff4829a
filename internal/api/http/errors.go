package httpapi

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cloudcast/internal/weather"
)

// ErrorHandler renders every error as {"error": true, "kind", "message"}.
// Domain errors map to a status by category and carry the user-facing text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   true,
			"kind":    "InvalidRequest",
			"message": fe.Message,
		})
	}

	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		log.Printf("ERROR: http: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"kind":    weather.Kind(err),
		"message": weather.UserMessage(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrMissingCredential):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, weather.ErrInvalidCredential):
		return fiber.StatusUnauthorized
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrServiceUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, weather.ErrPermissionDenied):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
