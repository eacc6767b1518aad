package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/maheshrc27/contentdesk/internal/transfer"
)

type fakeContentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.ContentItem
	err   error
}

func newFakeContentRepo(items ...*models.ContentItem) *fakeContentRepo {
	r := &fakeContentRepo{items: map[uuid.UUID]*models.ContentItem{}}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeContentRepo) Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeContentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (r *fakeContentRepo) filter(keep func(*models.ContentItem) bool) []*models.ContentItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ContentItem
	for _, item := range r.items {
		if keep(item) {
			copied := *item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeContentRepo) ListByStatus(ctx context.Context, status models.Status, offset, limit int) ([]*models.ContentItem, error) {
	out := r.filter(func(c *models.ContentItem) bool { return c.Status == status })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeContentRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ContentItem, error) {
	return r.filter(func(c *models.ContentItem) bool { return c.IsDue(now) }), nil
}

func (r *fakeContentRepo) ListWithEngagement(ctx context.Context) ([]*models.ContentItem, error) {
	return r.filter(func(c *models.ContentItem) bool { return c.Status == models.StatusPosted && c.HasEngagement() }), nil
}

func (r *fakeContentRepo) ListWithExternalID(ctx context.Context) ([]*models.ContentItem, error) {
	return r.filter(func(c *models.ContentItem) bool { return c.ExternalID != nil }), nil
}

func (r *fakeContentRepo) ListPostedBefore(ctx context.Context, cutoff time.Time) ([]*models.ContentItem, error) {
	return r.filter(func(c *models.ContentItem) bool {
		if c.Status != models.StatusPosted {
			return false
		}
		at := c.CreatedAt
		if c.PostedAt != nil {
			at = *c.PostedAt
		}
		return at.Before(cutoff)
	}), nil
}

func (r *fakeContentRepo) Update(ctx context.Context, item *models.ContentItem, expected models.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	stored, ok := r.items[item.ID]
	if !ok || stored.Status != expected {
		return false, nil
	}
	copied := *item
	r.items[item.ID] = &copied
	return true, nil
}

func (r *fakeContentRepo) Claim(ctx context.Context, id uuid.UUID, at time.Time, dueBy *time.Time) (*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.items[id]
	if !ok || item.Status != models.StatusScheduled {
		return nil, nil
	}
	if dueBy != nil && !item.IsDue(*dueBy) {
		return nil, nil
	}
	if err := item.TransitionTo(models.StatusPosted, at); err != nil {
		return nil, err
	}
	copied := *item
	return &copied, nil
}

func (r *fakeContentRepo) Release(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Status != models.StatusPosted || item.ExternalID != nil {
		return nil
	}
	item.Status = models.StatusScheduled
	item.PostedAt = nil
	return nil
}

func (r *fakeContentRepo) UpdateEngagement(ctx context.Context, id uuid.UUID, views, likes, comments int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Views, item.Likes, item.Comments = &views, &likes, &comments
	return nil
}

func (r *fakeContentRepo) Remove(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type fakePreferenceRepo struct {
	mu      sync.Mutex
	prefs   map[string]int
	upserts int
	err     error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{prefs: map[string]int{}}
}

func (r *fakePreferenceRepo) GetByWeekday(ctx context.Context, weekday string) (*models.DayPreference, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, false, r.err
	}
	hour, ok := r.prefs[weekday]
	if !ok {
		return nil, false, nil
	}
	return &models.DayPreference{Weekday: weekday, Hour: hour}, true, nil
}

func (r *fakePreferenceRepo) List(ctx context.Context) ([]*models.DayPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DayPreference
	for day, hour := range r.prefs {
		out = append(out, &models.DayPreference{Weekday: day, Hour: hour})
	}
	return out, r.err
}

func (r *fakePreferenceRepo) Upsert(ctx context.Context, p *models.DayPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.upserts++
	r.prefs[p.Weekday] = p.Hour
	return nil
}

func (r *fakePreferenceRepo) InsertMissing(ctx context.Context, p *models.DayPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prefs[p.Weekday]; !ok {
		r.prefs[p.Weekday] = p.Hour
	}
	return nil
}

type fakeAssetRepo struct {
	mu      sync.Mutex
	nextID  int64
	assets  map[int64]*models.MediaAsset
	removed []int64
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{assets: map[int64]*models.MediaAsset{}}
}

func (r *fakeAssetRepo) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copied := *ma
	copied.ID = r.nextID
	r.assets[r.nextID] = &copied
	return r.nextID, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assets[id], nil
}

func (r *fakeAssetRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assets, id)
	r.removed = append(r.removed, id)
	return nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*models.PublicationLog
}

func (r *fakeLogRepo) Create(ctx context.Context, pl *models.PublicationLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *pl
	copied.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, &copied)
	return copied.ID, nil
}

func (r *fakeLogRepo) ListByContentID(ctx context.Context, contentID uuid.UUID) ([]*models.PublicationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PublicationLog
	for _, e := range r.entries {
		if e.ContentID == contentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeR2 struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	err     error
}

const fakeR2Base = "https://media.example.com/"

func newFakeR2() *fakeR2 {
	return &fakeR2{objects: map[string][]byte{}}
}

func (f *fakeR2) Upload(ctx context.Context, key string, file []byte, filetype string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.objects[key] = file
	return fakeR2Base + key, nil
}

func (f *fakeR2) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeR2) KeyFromURL(fileURL string) (string, bool) {
	if !strings.HasPrefix(fileURL, fakeR2Base) {
		return "", false
	}
	return strings.TrimPrefix(fileURL, fakeR2Base), true
}

type fakeGenerator struct {
	caption string
	image   []byte
	err     error
}

func (f *fakeGenerator) Caption(ctx context.Context, topic string) (string, error) {
	return f.caption, f.err
}

func (f *fakeGenerator) Image(ctx context.Context, topic string) ([]byte, error) {
	return f.image, f.err
}

type fakeAutomation struct {
	mu       sync.Mutex
	payloads []*transfer.AutomationPayload
	err      error
	delay    time.Duration
	started  chan struct{}
	proceed  chan struct{}
}

func (f *fakeAutomation) Trigger(ctx context.Context, payload *transfer.AutomationPayload) error {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.proceed
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeYoutube struct {
	uploads []*VideoUpload
	id      string
	stats   map[string]transfer.VideoStatistics
	err     error
}

func (f *fakeYoutube) Upload(ctx context.Context, v *VideoUpload) (string, error) {
	f.uploads = append(f.uploads, v)
	return f.id, f.err
}

func (f *fakeYoutube) Statistics(ctx context.Context, ids []string) (map[string]transfer.VideoStatistics, error) {
	return f.stats, f.err
}

type scheduledPublish struct {
	id uuid.UUID
	at time.Time
}

type fakeScheduler struct {
	calls []scheduledPublish
	err   error
}

func (f *fakeScheduler) SchedulePublish(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.calls = append(f.calls, scheduledPublish{id: id, at: at})
	return f.err
}

var errBoom = errors.New("boom")

// pngBytes is the smallest header filetype recognises as image/png.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}

func int64p(v int64) *int64 { return &v }

func timep(t time.Time) *time.Time { return &t }
