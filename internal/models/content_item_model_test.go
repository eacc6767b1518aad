package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusDraft, StatusScheduled, true},
		{StatusScheduled, StatusDraft, true},
		{StatusScheduled, StatusPosted, true},
		{StatusDraft, StatusPosted, false},
		{StatusPosted, StatusScheduled, false},
		{StatusPosted, StatusDraft, false},
		{StatusDraft, StatusDraft, false},
		{StatusScheduled, StatusScheduled, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionToPostedStampsPostedAt(t *testing.T) {
	at := time.Date(2026, 3, 6, 19, 0, 0, 0, time.UTC)
	item := &ContentItem{Status: StatusScheduled, ScheduledAt: &at}

	require.NoError(t, item.TransitionTo(StatusPosted, at))
	require.Equal(t, StatusPosted, item.Status)
	require.NotNil(t, item.PostedAt)
	require.True(t, item.PostedAt.Equal(at))
}

func TestTransitionToDraftClearsSchedule(t *testing.T) {
	at := time.Now()
	item := &ContentItem{Status: StatusScheduled, ScheduledAt: &at}

	require.NoError(t, item.TransitionTo(StatusDraft, at))
	require.Nil(t, item.ScheduledAt)
}

func TestTransitionRejected(t *testing.T) {
	item := &ContentItem{Status: StatusPosted}

	err := item.TransitionTo(StatusScheduled, time.Now())
	require.True(t, errors.Is(err, ErrInvalidTransition))
	require.Equal(t, StatusPosted, item.Status)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Scheduled ")
	require.NoError(t, err)
	require.Equal(t, StatusScheduled, status)

	_, err = ParseStatus("archived")
	require.Error(t, err)
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	require.True(t, (&ContentItem{Status: StatusScheduled, ScheduledAt: &past}).IsDue(now))
	require.True(t, (&ContentItem{Status: StatusScheduled, ScheduledAt: &now}).IsDue(now))
	require.False(t, (&ContentItem{Status: StatusScheduled, ScheduledAt: &future}).IsDue(now))
	require.False(t, (&ContentItem{Status: StatusDraft, ScheduledAt: &past}).IsDue(now))
	require.False(t, (&ContentItem{Status: StatusScheduled}).IsDue(now))
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("friday")
	require.NoError(t, err)
	require.Equal(t, "Friday", day)

	_, err = ParseWeekday("Funday")
	require.Error(t, err)
	require.Len(t, Weekdays, 7)
}
