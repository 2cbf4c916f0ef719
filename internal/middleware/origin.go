package middleware

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/gofiber/fiber/v2"
)

// RequestOrigin puts the client IP on the request context for audit events.
func RequestOrigin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithOrigin(c.UserContext(), c.IP()))
		return c.Next()
	}
}
