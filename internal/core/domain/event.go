package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidEvent = errors.New("invalid interaction event data")

// WeekEvent is one interaction event (open, pick, complete, day check)
// recorded against a WeekKey. Events only enrich metrics; losing them never
// loses goal data.
type WeekEvent struct {
	ID        string    `json:"id" db:"id"`
	ProfileID string    `json:"profile_id" db:"profile_id"`
	WeekStamp string    `json:"week_stamp" db:"week_stamp"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func NewWeekEvent(profileID, weekStamp, eventType string) *WeekEvent {
	return &WeekEvent{
		ProfileID: profileID,
		WeekStamp: weekStamp,
		Type:      strings.TrimSpace(eventType),
		CreatedAt: time.Now().UTC(),
	}
}

func (e *WeekEvent) Validate() error {
	if strings.TrimSpace(e.ProfileID) == "" {
		return fmt.Errorf("%w: profile_id is required", ErrInvalidEvent)
	}
	if !IsWeekStamp(e.WeekStamp) {
		return ErrInvalidWeekStamp
	}
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	}
	if e.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at is required", ErrInvalidEvent)
	}
	return nil
}

// DayIndex is the Monday-first day-of-week (0..6) of the event timestamp.
func (e *WeekEvent) DayIndex() int {
	return (int(e.CreatedAt.UTC().Weekday()) + 6) % 7
}
