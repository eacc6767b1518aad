package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/contentdesk/configs"
	"github.com/maheshrc27/contentdesk/internal/transfer"
)

var ErrGeneratorDisabled = errors.New("AI generation is not configured")

// GeneratorService produces a caption and an image for a topic.
type GeneratorService interface {
	Caption(ctx context.Context, topic string) (string, error)
	Image(ctx context.Context, topic string) ([]byte, error)
}

type generatorService struct {
	cfg    config.OpenAI
	client *http.Client
}

func NewGeneratorService(cfg config.OpenAI, client *http.Client) GeneratorService {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestLimit}
	}
	return &generatorService{cfg: cfg, client: client}
}

func captionPrompt(topic string) string {
	return fmt.Sprintf("Write a scary, viral Instagram caption about %s. Use hashtags.", topic)
}

func imagePrompt(topic string) string {
	return fmt.Sprintf("Realistic paranormal investigation photo of %s. Night vision green tint, grainy CCTV footage look, dramatic lighting, shadows, 4k resolution.", topic)
}

func (s *generatorService) Caption(ctx context.Context, topic string) (string, error) {
	var resp transfer.ChatCompletionResponse
	err := s.post(ctx, "/chat/completions", transfer.ChatCompletionRequest{
		Model:    s.cfg.ChatModel,
		Messages: []transfer.ChatMessage{{Role: "user", Content: captionPrompt(topic)}},
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("caption generation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *generatorService) Image(ctx context.Context, topic string) ([]byte, error) {
	var resp transfer.ImageGenerationResponse
	err := s.post(ctx, "/images/generations", transfer.ImageGenerationRequest{
		Model:  s.cfg.ImageModel,
		Prompt: imagePrompt(topic),
		N:      1,
		Size:   s.cfg.ImageSize,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, errors.New("image generation returned no image")
	}

	return s.download(ctx, resp.Data[0].URL)
}

func (s *generatorService) post(ctx context.Context, path string, payload, out any) error {
	if s.cfg.APIKey == "" {
		return ErrGeneratorDisabled
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.cfg.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read openai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error *transfer.OpenAIError `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("openai %s: %s", path, apiErr.Error.Message)
		}
		return fmt.Errorf("openai %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode openai response: %w", err)
	}
	return nil
}

func (s *generatorService) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download generated image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
