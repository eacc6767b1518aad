package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/contentdesk/internal/cache"
	"github.com/maheshrc27/contentdesk/internal/models"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func engaged(created time.Time, likes, comments int64) *models.ContentItem {
	return &models.ContentItem{
		Status:    models.StatusPosted,
		CreatedAt: created,
		Likes:     int64p(likes),
		Comments:  int64p(comments),
	}
}

func newTestPreferenceService() (PreferenceService, *fakePreferenceRepo, *fakeContentRepo) {
	pr := newFakePreferenceRepo()
	cr := newFakeContentRepo()
	return NewPreferenceService(pr, cr, cache.NewMemoryStore(), time.Minute), pr, cr
}

func TestEngagementScoreWeightsComments(t *testing.T) {
	require.Equal(t, int64(10), EngagementScore(10, 0))
	require.Equal(t, int64(15), EngagementScore(10, 1))
	for c := int64(0); c < 10; c++ {
		require.Greater(t, EngagementScore(3, c+1), EngagementScore(3, c))
	}
}

func TestComputePreferredHoursPicksHighestMean(t *testing.T) {
	history := []*models.ContentItem{
		engaged(monday.Add(9*time.Hour), 10, 0),
		engaged(monday.Add(9*time.Hour+30*time.Minute), 30, 0),
		engaged(monday.Add(14*time.Hour), 1, 4),
		{Status: models.StatusPosted, CreatedAt: monday.Add(3 * time.Hour), Likes: int64p(1000)},
	}

	hours := ComputePreferredHours(history)
	require.Len(t, hours, 7)
	// 09:00 mean is 20, 14:00 is 21; the item without comments is ignored.
	require.Equal(t, 14, hours["Monday"])
	for _, day := range []string{"Sunday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"} {
		require.Equal(t, models.DefaultPreferredHour, hours[day], day)
	}
}

func TestComputePreferredHoursTieGoesToEarliestHour(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	history := []*models.ContentItem{
		engaged(tuesday.Add(18*time.Hour), 10, 0),
		engaged(tuesday.Add(8*time.Hour), 5, 1),
	}

	require.Equal(t, 8, ComputePreferredHours(history)["Tuesday"])
}

func TestComputePreferredHoursFavoursCommentsAtEqualLikes(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2)
	history := []*models.ContentItem{
		engaged(wednesday.Add(10*time.Hour), 5, 1),
		engaged(wednesday.Add(16*time.Hour), 5, 3),
	}

	require.Equal(t, 16, ComputePreferredHours(history)["Wednesday"])
}

func TestComputePreferredHoursUsesUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// Tuesday 01:00 local is Monday 19:30 UTC.
	created := time.Date(2024, 1, 2, 1, 0, 0, 0, ist)

	hours := ComputePreferredHours([]*models.ContentItem{engaged(created, 5, 5)})
	require.Equal(t, 19, hours["Monday"])
	require.Equal(t, models.DefaultPreferredHour, hours["Tuesday"])
}

func TestRecomputeWithEmptyHistoryStoresDefaults(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()

	require.NoError(t, svc.RecomputePreferences(context.Background(), nil))
	require.Len(t, pr.prefs, 7)
	for _, day := range models.Weekdays {
		require.Equal(t, models.DefaultPreferredHour, pr.prefs[day])
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()
	history := []*models.ContentItem{engaged(monday.Add(7*time.Hour), 3, 3)}

	require.NoError(t, svc.RecomputePreferences(context.Background(), history))
	first := map[string]int{}
	for k, v := range pr.prefs {
		first[k] = v
	}

	require.NoError(t, svc.RecomputePreferences(context.Background(), history))
	require.Len(t, pr.prefs, 7)
	require.Equal(t, first, pr.prefs)
	require.Equal(t, 14, pr.upserts)
}

func TestResolveBestHour(t *testing.T) {
	svc, _, _ := newTestPreferenceService()
	ctx := context.Background()

	require.Equal(t, models.DefaultPreferredHour, svc.ResolveBestHour(ctx, monday))

	history := []*models.ContentItem{engaged(monday.Add(11*time.Hour), 50, 2)}
	require.NoError(t, svc.RecomputePreferences(ctx, history))

	nextMonday := monday.AddDate(0, 0, 7).Add(23 * time.Hour)
	require.Equal(t, 11, svc.ResolveBestHour(ctx, nextMonday))
	require.Equal(t, models.DefaultPreferredHour, svc.ResolveBestHour(ctx, monday.AddDate(0, 0, 2)))
}

func TestResolveBestHourFallsBackOnStoreError(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()
	pr.prefs["Monday"] = 6
	pr.err = errBoom

	require.Equal(t, models.DefaultPreferredHour, svc.ResolveBestHour(context.Background(), monday))
}

func TestResolveBestHourReadsStoreWithoutCache(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()
	pr.prefs["Monday"] = 6

	require.Equal(t, 6, svc.ResolveBestHour(context.Background(), monday))
}

func TestSetPreferenceValidatesAndInvalidates(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()
	ctx := context.Background()

	require.NoError(t, svc.RecomputePreferences(ctx, nil))
	require.Equal(t, 20, svc.ResolveBestHour(ctx, monday))

	require.ErrorIs(t, svc.SetPreference(ctx, "monday", 24), ErrInvalidHour)
	require.Error(t, svc.SetPreference(ctx, "Funday", 3))

	require.NoError(t, svc.SetPreference(ctx, "monday", 7))
	require.Equal(t, 7, pr.prefs["Monday"])
	require.Equal(t, 7, svc.ResolveBestHour(ctx, monday))
}

func TestEnsureSeededKeepsExisting(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()
	pr.prefs["Friday"] = 9

	require.NoError(t, svc.EnsureSeeded(context.Background()))
	require.Len(t, pr.prefs, 7)
	require.Equal(t, 9, pr.prefs["Friday"])
	require.Equal(t, models.DefaultPreferredHour, pr.prefs["Sunday"])
}

func TestListPreferencesOrderedWithDefaults(t *testing.T) {
	svc, pr, _ := newTestPreferenceService()
	pr.prefs["Wednesday"] = 4

	prefs, err := svc.ListPreferences(context.Background())
	require.NoError(t, err)
	require.Len(t, prefs, 7)
	require.Equal(t, "Sunday", prefs[0].Weekday)
	require.Equal(t, "Wednesday", prefs[3].Weekday)
	require.Equal(t, 4, prefs[3].Hour)
	require.Equal(t, models.DefaultPreferredHour, prefs[6].Hour)
}

func TestRecomputeFromHistoryLoadsPostedItems(t *testing.T) {
	svc, pr, cr := newTestPreferenceService()
	item := engaged(monday.Add(16*time.Hour), 4, 4)
	item.ID = uuid.New()
	cr.items[item.ID] = item
	draft := &models.ContentItem{Status: models.StatusDraft, CreatedAt: monday.Add(2 * time.Hour), Likes: int64p(999), Comments: int64p(999)}
	require.NoError(t, cr.Create(context.Background(), nil, draft))

	hours, err := svc.RecomputeFromHistory(context.Background())
	require.NoError(t, err)
	require.Equal(t, 16, hours["Monday"])
	require.Equal(t, 16, pr.prefs["Monday"])
}
