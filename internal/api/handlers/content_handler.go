package handlers

import (
	"context"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/service"
	"github.com/maheshrc27/contentdesk/internal/transfer"
)

type ContentHandler struct {
	s service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{s: s}
}

func (h *ContentHandler) List(c *fiber.Ctx) error {
	status, err := models.ParseStatus(c.Query("status", string(models.StatusDraft)))
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.s.List(c.Context(), status, c.QueryInt("offset", 0), c.QueryInt("limit", service.DefaultPageSize))
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []*models.ContentItem{}
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

func (h *ContentHandler) Get(c *fiber.Ctx) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	item, err := h.s.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ContentHandler) History(c *fiber.Ctx) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	entries, err := h.s.History(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if entries == nil {
		entries = []*models.PublicationLog{}
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}

func (h *ContentHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateDraft
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		return badRequest(c, "topic is required")
	}

	item, err := h.s.GenerateDraft(c.Context(), req.Topic)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ContentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file selected")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "Unable to read file")
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "Unable to read file")
	}

	item, err := h.s.UploadDraft(c.Context(), c.FormValue("caption"), c.FormValue("topic"), fileBytes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ContentHandler) UpdateCaption(c *fiber.Ctx) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	var req transfer.CaptionUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	item, err := h.s.UpdateCaption(c.Context(), id, req.Caption)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ContentHandler) Schedule(c *fiber.Ctx) error {
	return h.schedule(c, h.s.Schedule)
}

func (h *ContentHandler) Reschedule(c *fiber.Ctx) error {
	return h.schedule(c, h.s.Reschedule)
}

type scheduleFunc func(ctx context.Context, id uuid.UUID, req *transfer.ScheduleRequest) (*models.ContentItem, error)

func (h *ContentHandler) schedule(c *fiber.Ctx, fn scheduleFunc) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	item, err := fn(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ContentHandler) Cancel(c *fiber.Ctx) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	item, err := h.s.Cancel(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *ContentHandler) Dispatch(c *fiber.Ctx) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	if err := h.s.Dispatch(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Content dispatched",
	})
}

func (h *ContentHandler) PublishVideo(c *fiber.Ctx) error {
	id, ok := contentID(c)
	if !ok {
		return badRequest(c, "Invalid content id")
	}

	var req transfer.VideoPublish
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	item, err := h.s.PublishVideo(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(item)
}
