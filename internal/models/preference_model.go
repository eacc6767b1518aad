package models

import (
	"fmt"
	"strings"
	"time"
)

const DefaultPreferredHour = 20

type DayPreference struct {
	Weekday   string    `db:"weekday" json:"weekday"`
	Hour      int       `db:"hour" json:"hour"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Weekdays lists the seven record keys in time.Weekday order.
var Weekdays = []string{
	time.Sunday.String(),
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
}

func ParseWeekday(raw string) (string, error) {
	for _, day := range Weekdays {
		if strings.EqualFold(day, strings.TrimSpace(raw)) {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", raw)
}

func ValidHour(hour int) bool {
	return hour >= 0 && hour <= 23
}
