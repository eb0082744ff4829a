package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// NewApp returns the Fiber app the API is served from. Values read from a
// request are kept after it completes (cache keys, favorites, flag names), so
// the app runs Immutable: fasthttp would otherwise reuse their backing bytes.
func NewApp(writeTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "cloudcast",
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          writeTimeout,
		ErrorHandler:          ErrorHandler,
	})
}
