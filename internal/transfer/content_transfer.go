package transfer

import "time"

type GenerateDraft struct {
	Topic string `json:"topic"`
}

type CaptionUpdate struct {
	Caption string `json:"caption"`
}

// ScheduleRequest carries the operator's approval. Date is YYYY-MM-DD and
// Time is HH:MM, both UTC. Without Time the preferred hour for the weekday
// is used.
type ScheduleRequest struct {
	Caption *string `json:"caption"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
}

type VideoPublish struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type AutomationPayload struct {
	ID          string     `json:"id"`
	Caption     string     `json:"caption"`
	ImageURL    string     `json:"image_url"`
	MediaType   string     `json:"media_type"`
	Topic       string     `json:"topic"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type DispatchSummary struct {
	Due        int `json:"due"`
	Dispatched int `json:"dispatched"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

type PurgeSummary struct {
	Deleted       int `json:"deleted"`
	MediaRemoved  int `json:"media_removed"`
	MediaFailures int `json:"media_failures"`
}

type SyncSummary struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type VideoStatistics struct {
	Views    int64
	Likes    int64
	Comments int64
}
