package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentdesk/internal/cache"
	"github.com/maheshrc27/contentdesk/internal/metrics"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/repository"
)

// CommentWeight favours discussion over passive approval when scoring a post.
const CommentWeight = 5

var ErrInvalidHour = errors.New("hour must be between 0 and 23")

type PreferenceService interface {
	ResolveBestHour(ctx context.Context, date time.Time) int
	RecomputePreferences(ctx context.Context, history []*models.ContentItem) error
	RecomputeFromHistory(ctx context.Context) (map[string]int, error)
	ListPreferences(ctx context.Context) ([]*models.DayPreference, error)
	SetPreference(ctx context.Context, weekday string, hour int) error
	EnsureSeeded(ctx context.Context) error
}

type preferenceService struct {
	pr    repository.PreferenceRepository
	cr    repository.ContentRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewPreferenceService(pr repository.PreferenceRepository, cr repository.ContentRepository, c cache.Cache, ttl time.Duration) PreferenceService {
	return &preferenceService{
		pr:    pr,
		cr:    cr,
		cache: c,
		ttl:   ttl,
	}
}

func EngagementScore(likes, comments int64) int64 {
	return likes + CommentWeight*comments
}

// ComputePreferredHours returns the hour with the highest mean engagement score
// for every weekday, keyed by weekday name. Items are bucketed by the UTC
// weekday and hour of their creation time. Ties go to the earliest hour and
// weekdays without history get DefaultPreferredHour.
func ComputePreferredHours(history []*models.ContentItem) map[string]int {
	type bucket struct {
		total int64
		count int64
	}
	var buckets [7][24]bucket

	for _, item := range history {
		if item == nil || !item.HasEngagement() {
			continue
		}
		created := item.CreatedAt.UTC()
		b := &buckets[created.Weekday()][created.Hour()]
		b.total += EngagementScore(*item.Likes, *item.Comments)
		b.count++
	}

	hours := make(map[string]int, len(models.Weekdays))
	for day, name := range models.Weekdays {
		best := models.DefaultPreferredHour
		found := false
		var bestMean float64

		for hour := 0; hour < 24; hour++ {
			b := buckets[day][hour]
			if b.count == 0 {
				continue
			}
			mean := float64(b.total) / float64(b.count)
			if !found || mean > bestMean {
				best, bestMean, found = hour, mean, true
			}
		}
		hours[name] = best
	}
	return hours
}

func (s *preferenceService) ResolveBestHour(ctx context.Context, date time.Time) int {
	weekday := date.UTC().Weekday().String()

	var cached map[string]int
	if found, err := s.cache.Get(ctx, cache.KeyPreferences, &cached); err == nil && found {
		if hour, ok := cached[weekday]; ok && models.ValidHour(hour) {
			return hour
		}
	}

	pref, isExist, err := s.pr.GetByWeekday(ctx, weekday)
	if err != nil || !isExist || !models.ValidHour(pref.Hour) {
		return models.DefaultPreferredHour
	}

	return pref.Hour
}

func (s *preferenceService) RecomputePreferences(ctx context.Context, history []*models.ContentItem) error {
	hours := ComputePreferredHours(history)

	for _, weekday := range models.Weekdays {
		pref := &models.DayPreference{Weekday: weekday, Hour: hours[weekday]}
		if err := s.pr.Upsert(ctx, pref); err != nil {
			return fmt.Errorf("upsert preference for %s: %w", weekday, err)
		}
	}

	s.refreshCache(ctx, hours)
	metrics.PreferenceRecomputes.Inc()
	slog.Info("weekday preferences recomputed", "items", len(history))
	return nil
}

func (s *preferenceService) RecomputeFromHistory(ctx context.Context) (map[string]int, error) {
	var history []*models.ContentItem

	found, err := s.cache.Get(ctx, cache.KeyEngagementHistory, &history)
	if err != nil || !found {
		history, err = s.cr.ListWithEngagement(ctx)
		if err != nil {
			return nil, fmt.Errorf("load engagement history: %w", err)
		}
		if err := s.cache.Set(ctx, cache.KeyEngagementHistory, history, s.ttl); err != nil {
			slog.Info(err.Error())
		}
	}

	if err := s.RecomputePreferences(ctx, history); err != nil {
		return nil, err
	}
	return ComputePreferredHours(history), nil
}

func (s *preferenceService) ListPreferences(ctx context.Context) ([]*models.DayPreference, error) {
	prefs, err := s.pr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	byDay := make(map[string]*models.DayPreference, len(prefs))
	for _, p := range prefs {
		byDay[p.Weekday] = p
	}

	ordered := make([]*models.DayPreference, 0, len(models.Weekdays))
	for _, weekday := range models.Weekdays {
		if p, ok := byDay[weekday]; ok {
			ordered = append(ordered, p)
			continue
		}
		ordered = append(ordered, &models.DayPreference{Weekday: weekday, Hour: models.DefaultPreferredHour})
	}
	return ordered, nil
}

func (s *preferenceService) SetPreference(ctx context.Context, weekday string, hour int) error {
	day, err := models.ParseWeekday(weekday)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if !models.ValidHour(hour) {
		return ErrInvalidHour
	}

	if err := s.pr.Upsert(ctx, &models.DayPreference{Weekday: day, Hour: hour}); err != nil {
		return fmt.Errorf("upsert preference for %s: %w", day, err)
	}

	s.invalidate(ctx)
	return nil
}

// EnsureSeeded stores the default hour for every weekday that has no record,
// leaving existing records untouched.
func (s *preferenceService) EnsureSeeded(ctx context.Context) error {
	for _, weekday := range models.Weekdays {
		pref := &models.DayPreference{Weekday: weekday, Hour: models.DefaultPreferredHour}
		if err := s.pr.InsertMissing(ctx, pref); err != nil {
			return fmt.Errorf("seed preference for %s: %w", weekday, err)
		}
	}

	s.invalidate(ctx)
	return nil
}

func (s *preferenceService) refreshCache(ctx context.Context, hours map[string]int) {
	if err := s.cache.Set(ctx, cache.KeyPreferences, hours, s.ttl); err != nil {
		slog.Info(err.Error())
	}
}

func (s *preferenceService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyPreferences); err != nil {
		slog.Info(err.Error())
	}
}
