package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/maheshrc27/contentdesk/internal/transfer"
)

var ErrAutomationDisabled = errors.New("automation webhook is not configured")

// AutomationService hands a post to the external scenario runner.
type AutomationService interface {
	Trigger(ctx context.Context, payload *transfer.AutomationPayload) error
}

type automationService struct {
	webhookURL string
	client     *http.Client
}

func NewAutomationService(webhookURL string, client *http.Client) AutomationService {
	if client == nil {
		client = &http.Client{}
	}
	return &automationService{webhookURL: webhookURL, client: client}
}

func (s *automationService) Trigger(ctx context.Context, payload *transfer.AutomationPayload) error {
	if s.webhookURL == "" {
		return ErrAutomationDisabled
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("automation webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("automation webhook returned status %d", resp.StatusCode)
	}

	return nil
}
