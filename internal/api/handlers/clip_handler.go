package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentdesk/internal/service"
	"github.com/maheshrc27/contentdesk/internal/transfer"
)

type ClipHandler struct {
	s service.ClipService
}

func NewClipHandler(s service.ClipService) *ClipHandler {
	return &ClipHandler{s: s}
}

func (h *ClipHandler) Effects(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"effects": h.s.Effects(),
	})
}

// Render blocks until the transcoder finishes or times out.
func (h *ClipHandler) Render(c *fiber.Ctx) error {
	var req transfer.ClipRender
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Source == "" {
		return badRequest(c, "source is required")
	}

	out, err := h.s.Render(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
