package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPosted    Status = "posted"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[Status][]Status{
	StatusDraft:     {StatusScheduled},
	StatusScheduled: {StatusDraft, StatusPosted},
	StatusPosted:    {},
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ContentItem struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Caption      string     `db:"caption" json:"caption"`
	MediaURL     string     `db:"media_url" json:"media_url"`
	MediaAssetID *int64     `db:"media_asset_id" json:"media_asset_id,omitempty"`
	MediaType    string     `db:"media_type" json:"media_type"`
	Topic        string     `db:"topic" json:"topic"`
	Status       Status     `db:"status" json:"status"`
	ScheduledAt  *time.Time `db:"scheduled_at" json:"scheduled_at"`
	ExternalID   *string    `db:"external_id" json:"external_id,omitempty"`
	Views        *int64     `db:"views" json:"views"`
	Likes        *int64     `db:"likes" json:"likes"`
	Comments     *int64     `db:"comments" json:"comments"`
	PostedAt     *time.Time `db:"posted_at" json:"posted_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// TransitionTo moves the item to next, keeping ScheduledAt and PostedAt consistent
// with the new status.
func (c *ContentItem) TransitionTo(next Status, at time.Time) error {
	if !c.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, next)
	}

	switch next {
	case StatusDraft:
		c.ScheduledAt = nil
	case StatusPosted:
		posted := at.UTC()
		c.PostedAt = &posted
	}

	c.Status = next
	return nil
}

func (c *ContentItem) HasEngagement() bool {
	return c.Likes != nil && c.Comments != nil
}

func (c *ContentItem) IsDue(now time.Time) bool {
	return c.Status == StatusScheduled && c.ScheduledAt != nil && !c.ScheduledAt.After(now)
}
