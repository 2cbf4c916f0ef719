package middleware

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected verifies the bearer token and stores the caller identity.
func JWTProtected(tokens *services.TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:    tokens.KeyFunc,
		Claims:     &services.TokenClaims{},
		ContextKey: "user",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok || claims.ExpiresAt == nil {
				return unauthorized(c)
			}
			id, err := services.IdentityFromClaims(claims)
			if err != nil {
				return unauthorized(c)
			}
			access.SetIdentity(c, id)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
		Code:    "UNAUTHENTICATED",
	})
}
