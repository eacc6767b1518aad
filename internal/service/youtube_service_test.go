package service

import (
	"context"
	"testing"
	"time"

	config "github.com/maheshrc27/contentdesk/configs"
	"github.com/stretchr/testify/require"
)

func TestVideoStatusSchedulesFuturePublish(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	at := now.Add(6 * time.Hour)

	status := videoStatus(&at, now)
	require.Equal(t, "private", status.PrivacyStatus)
	require.Equal(t, "2024-03-01T18:00:00Z", status.PublishAt)
}

func TestVideoStatusPublishesImmediately(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)

	require.Equal(t, "public", videoStatus(nil, now).PrivacyStatus)
	status := videoStatus(&past, now)
	require.Equal(t, "public", status.PrivacyStatus)
	require.Empty(t, status.PublishAt)
}

func TestYoutubeRequiresCredentials(t *testing.T) {
	svc := NewYoutubeService(config.Youtube{})

	_, err := svc.Upload(context.Background(), &VideoUpload{MediaURL: "http://example.invalid/v.mp4"})
	require.ErrorIs(t, err, ErrYoutubeDisabled)

	_, err = svc.Statistics(context.Background(), []string{"abc"})
	require.ErrorIs(t, err, ErrYoutubeDisabled)

	stats, err := svc.Statistics(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, stats)
}
