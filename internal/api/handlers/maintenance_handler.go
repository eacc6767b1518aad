package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentdesk/internal/service"
)

type MaintenanceHandler struct {
	cs service.ContentService
}

func NewMaintenanceHandler(cs service.ContentService) *MaintenanceHandler {
	return &MaintenanceHandler{cs: cs}
}

// Purge deletes posted items older than ?days=N, or the configured retention.
func (h *MaintenanceHandler) Purge(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	if days < 0 {
		return badRequest(c, "days must be positive")
	}

	summary, err := h.cs.Purge(c.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *MaintenanceHandler) Sync(c *fiber.Ctx) error {
	summary, err := h.cs.SyncEngagement(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *MaintenanceHandler) DispatchDue(c *fiber.Ctx) error {
	summary, err := h.cs.DispatchDue(c.Context(), time.Now().UTC())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
