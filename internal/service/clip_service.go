package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/metrics"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/repository"
	"github.com/maheshrc27/contentdesk/internal/transcode"
	"github.com/maheshrc27/contentdesk/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrInvalidWindow = errors.New("clip window needs start >= 0 and end > start")

type ClipService interface {
	Effects() []string
	Render(ctx context.Context, req *transfer.ClipRender) (*transfer.ClipRendered, error)
}

type clipService struct {
	compositor *transcode.Compositor
	workDir    string
	r2         R2Service
	ar         repository.MediaAssetRepository
	content    ContentService
}

func NewClipService(
	compositor *transcode.Compositor,
	workDir string,
	r2 R2Service,
	ar repository.MediaAssetRepository,
	content ContentService) ClipService {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &clipService{
		compositor: compositor,
		workDir:    workDir,
		r2:         r2,
		ar:         ar,
		content:    content,
	}
}

func (s *clipService) Effects() []string {
	return s.compositor.Effects().Names()
}

func (s *clipService) Render(ctx context.Context, req *transfer.ClipRender) (*transfer.ClipRendered, error) {
	if req.Start < 0 || req.End <= req.Start {
		return nil, ErrInvalidWindow
	}
	if strings.TrimSpace(req.Source) == "" {
		return nil, errors.New("source is required")
	}

	framing, err := transcode.ParseFraming(req.Framing)
	if err != nil {
		return nil, err
	}

	var contentID uuid.UUID
	if req.ContentID != "" {
		contentID, err = uuid.Parse(req.ContentID)
		if err != nil {
			return nil, fmt.Errorf("invalid content id: %w", err)
		}
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	output := filepath.Join(s.workDir, fmt.Sprintf("clip-%s.mp4", key))
	defer os.Remove(output)

	result, err := s.compositor.RenderClip(ctx, transcode.ClipRequest{
		Source:      req.Source,
		StartOffset: req.Start,
		Duration:    req.End - req.Start,
		Effect:      req.Effect,
		Framing:     framing,
		OutputPath:  output,
	})
	metrics.RendersTotal.WithLabelValues(metrics.Result(err)).Inc()
	if result != nil {
		metrics.RenderDuration.Observe(result.Elapsed.Seconds())
	}
	if err != nil {
		var te *transcode.TranscodeError
		if errors.As(err, &te) {
			slog.Info("render failed", "stderr", te.Stderr)
		}
		return nil, err
	}

	clip, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read rendered clip: %w", err)
	}

	fileURL, err := s.r2.Upload(ctx, key+".mp4", clip, "video/mp4")
	if err != nil {
		return nil, fmt.Errorf("error uploading clip: %w", err)
	}

	asset := &models.MediaAsset{
		FileName: key + ".mp4",
		FileType: "video/mp4",
		FileSize: int64(len(clip)),
		FileURL:  fileURL,
		Origin:   models.AssetOriginRender,
	}
	asset.ID, err = s.ar.Create(ctx, nil, asset)
	if err != nil {
		return nil, fmt.Errorf("error saving media asset: %w", err)
	}

	if contentID != uuid.Nil {
		if _, err := s.content.AttachMedia(ctx, contentID, asset, models.MediaTypeVideo); err != nil {
			return nil, err
		}
	}

	return &transfer.ClipRendered{
		MediaURL:    fileURL,
		AssetID:     asset.ID,
		FilterChain: result.FilterChain,
		Seconds:     result.Elapsed.Seconds(),
	}, nil
}
