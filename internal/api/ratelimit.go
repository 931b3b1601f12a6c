package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/memory/v2"

	"github.com/entrybase-dev/entrybase/internal/config"
)

// RateLimiter limits requests per client IP over the configured window.
// Counters live in process memory, so limits apply per instance.
func RateLimiter(cfg config.RateLimitConfig) fiber.Handler {
	store := memory.New(memory.Config{
		GCInterval: 10 * time.Minute,
	})

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": int(cfg.Window.Seconds()),
			})
		},
		Storage: store,
	})
}
