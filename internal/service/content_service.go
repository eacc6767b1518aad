package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/contentdesk/internal/cache"
	"github.com/maheshrc27/contentdesk/internal/metrics"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/repository"
	"github.com/maheshrc27/contentdesk/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	syncConcurrency = 10
	maxTitleLength  = 100
)

var (
	ErrNotFound         = errors.New("content item not found")
	ErrNotDue           = errors.New("content item is not due yet")
	ErrInvalidSchedule  = errors.New("schedule needs a date as YYYY-MM-DD and an optional time as HH:MM")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrAlreadyPublished = errors.New("content item already has an external video")
	ErrNotVideo         = errors.New("content item does not carry a video")
)

var allowedUploadTypes = map[string]string{
	"mp4":  models.MediaTypeVideo,
	"mov":  models.MediaTypeVideo,
	"jpg":  models.MediaTypeImage,
	"jpeg": models.MediaTypeImage,
	"png":  models.MediaTypeImage,
}

// PublishScheduler queues a delayed publication attempt for an item.
type PublishScheduler interface {
	SchedulePublish(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ContentService interface {
	GenerateDraft(ctx context.Context, topic string) (*models.ContentItem, error)
	UploadDraft(ctx context.Context, caption, topic string, file []byte) (*models.ContentItem, error)
	List(ctx context.Context, status models.Status, offset, limit int) ([]*models.ContentItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	UpdateCaption(ctx context.Context, id uuid.UUID, caption string) (*models.ContentItem, error)
	AttachMedia(ctx context.Context, id uuid.UUID, asset *models.MediaAsset, mediaType string) (*models.ContentItem, error)
	Schedule(ctx context.Context, id uuid.UUID, req *transfer.ScheduleRequest) (*models.ContentItem, error)
	Reschedule(ctx context.Context, id uuid.UUID, req *transfer.ScheduleRequest) (*models.ContentItem, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	Dispatch(ctx context.Context, id uuid.UUID) error
	DispatchDue(ctx context.Context, now time.Time) (*transfer.DispatchSummary, error)
	PublishVideo(ctx context.Context, id uuid.UUID, req *transfer.VideoPublish) (*models.ContentItem, error)
	SyncEngagement(ctx context.Context) (*transfer.SyncSummary, error)
	Purge(ctx context.Context, olderThan time.Duration) (*transfer.PurgeSummary, error)
	History(ctx context.Context, id uuid.UUID) ([]*models.PublicationLog, error)
}

type ContentDeps struct {
	Content     repository.ContentRepository
	Assets      repository.MediaAssetRepository
	Logs        repository.PublicationLogRepository
	Preferences PreferenceService
	R2          R2Service
	Generator   GeneratorService
	Automation  AutomationService
	Youtube     YoutubeService
	Cache       cache.Cache
	Scheduler   PublishScheduler
	Retention   time.Duration
}

type contentService struct {
	cr        repository.ContentRepository
	ar        repository.MediaAssetRepository
	lr        repository.PublicationLogRepository
	prefs     PreferenceService
	r2        R2Service
	gen       GeneratorService
	auto      AutomationService
	yt        YoutubeService
	cache     cache.Cache
	scheduler PublishScheduler
	retention time.Duration
	now       func() time.Time
}

func NewContentService(d ContentDeps) ContentService {
	return &contentService{
		cr:        d.Content,
		ar:        d.Assets,
		lr:        d.Logs,
		prefs:     d.Preferences,
		r2:        d.R2,
		gen:       d.Generator,
		auto:      d.Automation,
		yt:        d.Youtube,
		cache:     d.Cache,
		scheduler: d.Scheduler,
		retention: d.Retention,
		now:       time.Now,
	}
}

func (s *contentService) GenerateDraft(ctx context.Context, topic string) (*models.ContentItem, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	caption, err := s.gen.Caption(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("generate caption: %w", err)
	}

	image, err := s.gen.Image(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	kind, err := filetype.Match(image)
	if err != nil || kind == types.Unknown {
		return nil, fmt.Errorf("%w: generated image could not be identified", ErrUnsupportedMedia)
	}

	asset, err := s.storeMedia(ctx, image, kind.MIME.Value, models.AssetOriginGenerated)
	if err != nil {
		return nil, err
	}

	return s.createDraft(ctx, caption, topic, asset, models.MediaTypeImage)
}

func (s *contentService) UploadDraft(ctx context.Context, caption, topic string, file []byte) (*models.ContentItem, error) {
	kind, err := filetype.Match(file)
	if err != nil || kind == types.Unknown {
		return nil, fmt.Errorf("%w: unknown file type", ErrUnsupportedMedia)
	}

	mediaType, ok := allowedUploadTypes[kind.Extension]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, kind.Extension)
	}

	asset, err := s.storeMedia(ctx, file, kind.MIME.Value, models.AssetOriginUpload)
	if err != nil {
		return nil, err
	}

	return s.createDraft(ctx, caption, topic, asset, mediaType)
}

func (s *contentService) storeMedia(ctx context.Context, file []byte, mime, origin string) (*models.MediaAsset, error) {
	key, err := gonanoid.New()
	if err != nil {
		log.Println(err.Error())
		return nil, err
	}

	fileURL, err := s.r2.Upload(ctx, key, file, mime)
	if err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	asset := &models.MediaAsset{
		FileName: key,
		FileType: mime,
		FileSize: int64(len(file)),
		FileURL:  fileURL,
		Origin:   origin,
	}

	asset.ID, err = s.ar.Create(ctx, nil, asset)
	if err != nil {
		return nil, fmt.Errorf("error saving media asset: %w", err)
	}

	return asset, nil
}

func (s *contentService) createDraft(ctx context.Context, caption, topic string, asset *models.MediaAsset, mediaType string) (*models.ContentItem, error) {
	item := &models.ContentItem{
		Caption:      caption,
		Topic:        topic,
		MediaURL:     asset.FileURL,
		MediaAssetID: &asset.ID,
		MediaType:    mediaType,
		Status:       models.StatusDraft,
	}

	if err := s.cr.Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("error saving draft: %w", err)
	}

	slog.Info("draft created", "id", item.ID.String(), "media_type", mediaType)
	return item, nil
}

func (s *contentService) List(ctx context.Context, status models.Status, offset, limit int) ([]*models.ContentItem, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return s.cr.ListByStatus(ctx, status, offset, limit)
}

func (s *contentService) Get(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	item, err := s.cr.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *contentService) UpdateCaption(ctx context.Context, id uuid.UUID, caption string) (*models.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Status == models.StatusPosted {
		return nil, fmt.Errorf("%w: posted items are read-only", models.ErrInvalidTransition)
	}

	item.Caption = caption
	if err := s.save(ctx, item, item.Status); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *contentService) AttachMedia(ctx context.Context, id uuid.UUID, asset *models.MediaAsset, mediaType string) (*models.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: media can only be replaced on drafts", models.ErrInvalidTransition)
	}

	item.MediaURL = asset.FileURL
	item.MediaAssetID = &asset.ID
	item.MediaType = mediaType
	if err := s.save(ctx, item, models.StatusDraft); err != nil {
		return nil, err
	}
	return item, nil
}

// publishTime resolves a schedule request to a UTC instant. A missing time
// takes the preferred hour for the date's weekday.
func (s *contentService) publishTime(ctx context.Context, req *transfer.ScheduleRequest) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidSchedule
	}

	if strings.TrimSpace(req.Time) == "" {
		hour := s.prefs.ResolveBestHour(ctx, date)
		return date.Add(time.Duration(hour) * time.Hour), nil
	}

	clock, err := time.ParseInLocation("15:04", strings.TrimSpace(req.Time), time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidSchedule
	}

	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
}

func (s *contentService) Schedule(ctx context.Context, id uuid.UUID, req *transfer.ScheduleRequest) (*models.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	at, err := s.publishTime(ctx, req)
	if err != nil {
		return nil, err
	}

	from := item.Status
	if err := item.TransitionTo(models.StatusScheduled, s.now()); err != nil {
		return nil, err
	}

	if req.Caption != nil {
		item.Caption = *req.Caption
	}
	item.ScheduledAt = &at

	if err := s.save(ctx, item, from); err != nil {
		return nil, err
	}

	s.enqueue(ctx, item)
	return item, nil
}

func (s *contentService) Reschedule(ctx context.Context, id uuid.UUID, req *transfer.ScheduleRequest) (*models.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Status != models.StatusScheduled {
		return nil, fmt.Errorf("%w: only scheduled items can be rescheduled", models.ErrInvalidTransition)
	}

	at, err := s.publishTime(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Caption != nil {
		item.Caption = *req.Caption
	}
	item.ScheduledAt = &at

	if err := s.save(ctx, item, models.StatusScheduled); err != nil {
		return nil, err
	}

	s.enqueue(ctx, item)
	return item, nil
}

func (s *contentService) Cancel(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := item.Status
	if err := item.TransitionTo(models.StatusDraft, s.now()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, item, from); err != nil {
		return nil, err
	}
	return item, nil
}

// enqueue is best effort: the periodic sweep picks up anything the queue
// misses.
func (s *contentService) enqueue(ctx context.Context, item *models.ContentItem) {
	if s.scheduler == nil || item.ScheduledAt == nil {
		return
	}
	if err := s.scheduler.SchedulePublish(ctx, item.ID, *item.ScheduledAt); err != nil {
		slog.Info("publish task not queued", "id", item.ID.String(), "error", err.Error())
	}
}

func (s *contentService) Dispatch(ctx context.Context, id uuid.UUID) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if item.Status != models.StatusScheduled {
		return fmt.Errorf("%w: %s item cannot be dispatched", models.ErrInvalidTransition, item.Status)
	}

	now := s.now()
	if !item.IsDue(now) {
		return ErrNotDue
	}

	claimed, err := s.cr.Claim(ctx, id, now, &now)
	if err != nil {
		return fmt.Errorf("claim %s: %w", id, err)
	}
	if claimed == nil {
		return fmt.Errorf("%w: item was claimed by another dispatch", models.ErrInvalidTransition)
	}

	return s.dispatch(ctx, claimed)
}

// dispatch sends an item this caller has already claimed. A failed send hands
// the item back to the schedule.
func (s *contentService) dispatch(ctx context.Context, item *models.ContentItem) error {
	payload := &transfer.AutomationPayload{
		ID:          item.ID.String(),
		Caption:     item.Caption,
		ImageURL:    item.MediaURL,
		MediaType:   item.MediaType,
		Topic:       item.Topic,
		ScheduledAt: item.ScheduledAt,
	}

	err := s.auto.Trigger(ctx, payload)
	metrics.DispatchTotal.WithLabelValues(models.ChannelAutomation, metrics.Result(err)).Inc()
	s.record(ctx, item.ID, models.ChannelAutomation, err)

	if err != nil {
		slog.Info("dispatch failed", "id", item.ID.String(), "error", err.Error())
		if rerr := s.cr.Release(ctx, item.ID); rerr != nil {
			slog.Info("claim not released", "id", item.ID.String(), "error", rerr.Error())
		}
		return fmt.Errorf("dispatch %s: %w", item.ID, err)
	}
	return nil
}

func (s *contentService) DispatchDue(ctx context.Context, now time.Time) (*transfer.DispatchSummary, error) {
	due, err := s.cr.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due items: %w", err)
	}

	summary := &transfer.DispatchSummary{Due: len(due)}
	for _, item := range due {
		claimed, err := s.cr.Claim(ctx, item.ID, s.now(), &now)
		if err != nil {
			slog.Info("claim failed", "id", item.ID.String(), "error", err.Error())
			summary.Failed++
			continue
		}
		if claimed == nil {
			summary.Skipped++
			continue
		}

		if err := s.dispatch(ctx, claimed); err != nil {
			summary.Failed++
			continue
		}
		summary.Dispatched++
	}

	if summary.Due > 0 {
		log.Printf("Dispatched %d of %d due items", summary.Dispatched, summary.Due)
	}
	return summary, nil
}

func (s *contentService) PublishVideo(ctx context.Context, id uuid.UUID, req *transfer.VideoPublish) (*models.ContentItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.MediaType != models.MediaTypeVideo {
		return nil, ErrNotVideo
	}
	if item.ExternalID != nil {
		return nil, ErrAlreadyPublished
	}
	if item.Status != models.StatusScheduled {
		return nil, fmt.Errorf("%w: schedule the item before publishing", models.ErrInvalidTransition)
	}

	item, err = s.cr.Claim(ctx, id, s.now(), nil)
	if err != nil {
		return nil, fmt.Errorf("claim %s: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item was claimed by another dispatch", models.ErrInvalidTransition)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = item.Topic
	}
	if title == "" {
		title, _, _ = strings.Cut(item.Caption, "\n")
	}
	if len([]rune(title)) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}

	externalID, err := s.yt.Upload(ctx, &VideoUpload{
		Title:        title,
		Description:  item.Caption,
		MediaURL:     item.MediaURL,
		ThumbnailURL: req.ThumbnailURL,
		PublishAt:    item.ScheduledAt,
	})
	metrics.DispatchTotal.WithLabelValues(models.ChannelYoutube, metrics.Result(err)).Inc()
	s.record(ctx, item.ID, models.ChannelYoutube, err)
	if err != nil {
		if rerr := s.cr.Release(ctx, item.ID); rerr != nil {
			slog.Info("claim not released", "id", item.ID.String(), "error", rerr.Error())
		}
		return nil, err
	}

	item.ExternalID = &externalID
	if err := s.save(ctx, item, models.StatusPosted); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *contentService) SyncEngagement(ctx context.Context) (*transfer.SyncSummary, error) {
	items, err := s.cr.ListWithExternalID(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published videos: %w", err)
	}

	summary := &transfer.SyncSummary{Checked: len(items)}
	if len(items) == 0 {
		return summary, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, *item.ExternalID)
	}

	stats, err := s.yt.Statistics(ctx, ids)
	if err != nil {
		return nil, err
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	semaphore := make(chan struct{}, syncConcurrency)

	for _, item := range items {
		stat, ok := stats[*item.ExternalID]
		if !ok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(id uuid.UUID, stat transfer.VideoStatistics) {
			defer wg.Done()
			defer func() { <-semaphore }()

			err := s.cr.UpdateEngagement(ctx, id, stat.Views, stat.Likes, stat.Comments)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Info("engagement not stored", "id", id.String(), "error", err.Error())
				summary.Failed++
				return
			}
			summary.Updated++
		}(item.ID, stat)
	}
	wg.Wait()

	if err := s.cache.Delete(ctx, cache.KeyEngagementHistory); err != nil {
		slog.Info(err.Error())
	}
	return summary, nil
}

func (s *contentService) Purge(ctx context.Context, olderThan time.Duration) (*transfer.PurgeSummary, error) {
	if olderThan <= 0 {
		olderThan = s.retention
	}
	cutoff := s.now().Add(-olderThan)

	items, err := s.cr.ListPostedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired items: %w", err)
	}

	summary := &transfer.PurgeSummary{}
	for _, item := range items {
		if err := s.cr.Remove(ctx, item.ID); err != nil {
			slog.Info("purge failed", "id", item.ID.String(), "error", err.Error())
			continue
		}
		summary.Deleted++

		if item.MediaURL == "" {
			continue
		}
		if err := s.removeMedia(ctx, item); err != nil {
			slog.Info("media not removed", "id", item.ID.String(), "error", err.Error())
			summary.MediaFailures++
			continue
		}
		summary.MediaRemoved++
	}

	if summary.Deleted > 0 {
		if err := s.cache.Delete(ctx, cache.KeyEngagementHistory); err != nil {
			slog.Info(err.Error())
		}
	}

	log.Printf("Purged %d items older than %s", summary.Deleted, cutoff.Format(time.RFC3339))
	return summary, nil
}

// removeMedia deletes the stored object behind an item. Items backed by a
// media asset use the asset's object key; older rows fall back to the URL.
func (s *contentService) removeMedia(ctx context.Context, item *models.ContentItem) error {
	if item.MediaAssetID != nil {
		asset, err := s.ar.GetByID(ctx, *item.MediaAssetID)
		if err != nil {
			return err
		}
		if asset != nil {
			if err := s.r2.Delete(ctx, asset.FileName); err != nil {
				return err
			}
			return s.ar.Remove(ctx, asset.ID)
		}
	}

	if key, ok := s.r2.KeyFromURL(item.MediaURL); ok {
		return s.r2.Delete(ctx, key)
	}
	return nil
}

func (s *contentService) History(ctx context.Context, id uuid.UUID) ([]*models.PublicationLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.lr.ListByContentID(ctx, id)
}

func (s *contentService) record(ctx context.Context, id uuid.UUID, channel string, cause error) {
	entry := &models.PublicationLog{ContentID: id, Channel: channel}
	if cause != nil {
		entry.ErrorMessage = cause.Error()
	}
	if _, err := s.lr.Create(ctx, entry); err != nil {
		slog.Info(err.Error())
	}
}

// save writes item back if the stored status is still expected.
func (s *contentService) save(ctx context.Context, item *models.ContentItem, expected models.Status) error {
	ok, err := s.cr.Update(ctx, item, expected)
	if err != nil {
		return fmt.Errorf("error updating content item: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: item is no longer %s", models.ErrInvalidTransition, expected)
	}
	return nil
}
