package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError writes err as the standard error body. 5xx details are logged, not returned.
func respondError(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	resp := dto.ErrorResponse{
		Error:   true,
		Message: err.Error(),
		Code:    string(apperr.KindOf(err)),
		Fields:  apperr.FieldsOf(err),
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message()
	}

	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err.Error())
		resp.Message = "Internal server error"
		resp.Fields = nil
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body", Code: string(apperr.KindValidation),
	})
}

// parseComplaintID parses the :id route param. Malformed ids cannot exist.
func parseComplaintID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, store.ErrComplaintNotFound
	}
	return id, nil
}

func identity(c *fiber.Ctx) (access.Identity, error) {
	return access.FromCtx(c)
}
