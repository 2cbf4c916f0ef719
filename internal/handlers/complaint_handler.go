package handlers

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/query"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type (
	statusUpdater func(ctx context.Context, id access.Identity, complaintID uuid.UUID, status string) (*models.Complaint, error)
	deleter       func(ctx context.Context, id access.Identity, complaintID uuid.UUID) error
)

type ComplaintHandler struct {
	complaints *services.ComplaintService
}

func NewComplaintHandler(complaints *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var p query.Params
	if err := c.QueryParser(&p); err != nil {
		return badBody(c)
	}

	resp, err := h.complaints.List(c.UserContext(), id, p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ComplaintHandler) Create(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var in store.NewComplaint
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}

	complaint, err := h.complaints.Create(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(complaint)
}

func (h *ComplaintHandler) Get(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	complaintID, err := parseComplaintID(c)
	if err != nil {
		return respondError(c, err)
	}

	complaint, err := h.complaints.Get(c.UserContext(), id, complaintID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(complaint)
}

func (h *ComplaintHandler) UpdateContent(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	complaintID, err := parseComplaintID(c)
	if err != nil {
		return respondError(c, err)
	}
	var patch store.ContentPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c)
	}

	complaint, err := h.complaints.UpdateContent(c.UserContext(), id, complaintID, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(complaint)
}

// UpdateStatus serves PUT /complaints/admin/:id.
func (h *ComplaintHandler) UpdateStatus(c *fiber.Ctx) error {
	return h.updateStatus(c, h.complaints.UpdateStatus)
}

func (h *ComplaintHandler) AdminUpdateStatus(c *fiber.Ctx) error {
	return h.updateStatus(c, h.complaints.AdminUpdateStatus)
}

func (h *ComplaintHandler) updateStatus(c *fiber.Ctx, update statusUpdater) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	complaintID, err := parseComplaintID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	complaint, err := update(c.UserContext(), id, complaintID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(complaint)
}

func (h *ComplaintHandler) Delete(c *fiber.Ctx) error {
	return h.delete(c, h.complaints.Delete)
}

func (h *ComplaintHandler) AdminDelete(c *fiber.Ctx) error {
	return h.delete(c, h.complaints.AdminDelete)
}

func (h *ComplaintHandler) delete(c *fiber.Ctx, del deleter) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	complaintID, err := parseComplaintID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := del(c.UserContext(), id, complaintID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Complaint deleted"})
}

func (h *ComplaintHandler) AdminList(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var p query.Params
	if err := c.QueryParser(&p); err != nil {
		return badBody(c)
	}

	resp, err := h.complaints.AdminList(c.UserContext(), id, p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
