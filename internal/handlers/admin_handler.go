package handlers

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	stats *services.StatsService
	admin *services.AdminService
}

func NewAdminHandler(stats *services.StatsService, admin *services.AdminService) *AdminHandler {
	return &AdminHandler{stats: stats, admin: admin}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.stats.Stats(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) Reports(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.stats.Reports(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) Activities(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	resp, err := h.admin.Activities(c.UserContext(), id, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}

	users, err := h.admin.Users(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return respondError(c, err)
	}
	var f audit.Filter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}

	resp, err := h.admin.Logs(c.UserContext(), id, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// RawLog serves the event log file as plain text.
func (h *AdminHandler) RawLog(c *fiber.Ctx) error {
	raw, err := h.admin.RawLog()
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(raw)
}
