package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/service"
	"github.com/maheshrc27/contentdesk/internal/transcode"
)

func errorStatus(err error) int {
	var te *transcode.TranscodeError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, service.ErrNotDue),
		errors.Is(err, service.ErrAlreadyPublished):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidHour),
		errors.Is(err, service.ErrUnsupportedMedia),
		errors.Is(err, service.ErrNotVideo):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrAutomationDisabled),
		errors.Is(err, service.ErrGeneratorDisabled),
		errors.Is(err, service.ErrYoutubeDisabled):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, transcode.ErrTranscodeTimeout):
		return fiber.StatusGatewayTimeout
	case errors.As(err, &te):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		slog.Error(err.Error(), "path", c.Path())
	}

	body := fiber.Map{"error": err.Error()}
	var te *transcode.TranscodeError
	if errors.As(err, &te) {
		body["stderr"] = te.Stderr
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func contentID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
