package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/service"
)

type PreferenceHandler struct {
	s service.PreferenceService
}

func NewPreferenceHandler(s service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{s: s}
}

func (h *PreferenceHandler) List(c *fiber.Ctx) error {
	prefs, err := h.s.ListPreferences(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(prefs)
}

// BestHour resolves the publish hour for ?date=YYYY-MM-DD, defaulting to today.
func (h *PreferenceHandler) BestHour(c *fiber.Ctx) error {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"date":    date.Format("2006-01-02"),
		"weekday": date.Weekday().String(),
		"hour":    h.s.ResolveBestHour(c.Context(), date),
	})
}

func (h *PreferenceHandler) Set(c *fiber.Ctx) error {
	var req struct {
		Hour *int `json:"hour"`
	}
	if err := c.BodyParser(&req); err != nil || req.Hour == nil {
		return badRequest(c, "hour is required")
	}

	weekday, err := models.ParseWeekday(c.Params("weekday"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.SetPreference(c.Context(), weekday, *req.Hour); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PreferenceHandler) Recompute(c *fiber.Ctx) error {
	hours, err := h.s.RecomputeFromHistory(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(hours)
}
