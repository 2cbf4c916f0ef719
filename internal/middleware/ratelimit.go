package middleware

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit allows max requests per minute and IP using a sliding window.
// Counters are keyed by name so limiters can share one storage. storage may
// be nil for in-memory counters. max <= 0 disables limiting.
func RateLimit(name string, max int, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return name + ":" + c.IP() },
		Storage:           storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Too many requests, please try again later",
			})
		},
	})
}
