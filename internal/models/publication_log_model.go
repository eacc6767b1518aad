package models

import (
	"time"

	"github.com/google/uuid"
)

type PublicationLog struct {
	ID           int64     `db:"id" json:"id"`
	ContentID    uuid.UUID `db:"content_id" json:"content_id"`
	Channel      string    `db:"channel" json:"channel"` // automation, youtube
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	ChannelAutomation = "automation"
	ChannelYoutube    = "youtube"
)
