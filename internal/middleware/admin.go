package middleware

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired must run after JWTProtected.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := access.FromCtx(c)
		if err == nil {
			err = access.AdminOnly(id)
		}
		if err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Admin access required",
				Code:    string(apperr.KindOf(err)),
			})
		}
		return c.Next()
	}
}
