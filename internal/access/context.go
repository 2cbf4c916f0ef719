package access

import (
	"github.com/gofiber/fiber/v2"
)

const localsKey = "identity"

// SetIdentity stores the verified caller in Fiber locals.
func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(localsKey, id)
}

// FromCtx extracts the caller placed by the auth middleware.
func FromCtx(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(localsKey).(Identity)
	if !ok || id == nil {
		return nil, ErrNoIdentity
	}
	return id, nil
}
