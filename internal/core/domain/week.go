package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var ErrInvalidWeekStamp = errors.New("invalid week stamp (must be YYYY-MM-DD)")

// StampLayout is the canonical week key format: the Monday that starts the
// week, in the reference timezone.
const StampLayout = "2006-01-02"

var stampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// weekZone is the fixed reference timezone in which "the current week" is
// decided. Falls back to a fixed IST offset when tzdata is unavailable.
var weekZone = loadWeekZone()

func loadWeekZone() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// StartOfWeek returns the UTC midnight of the Monday starting the week that
// contains t, with the day boundary evaluated in the reference timezone.
func StartOfWeek(t time.Time) time.Time {
	local := t.In(weekZone)
	y, m, d := local.Date()

	// Monday-first offset: Mon=0 .. Sun=6.
	offset := (int(local.Weekday()) + 6) % 7

	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// CurrentWeekStamp is the stamp of the week containing now.
func CurrentWeekStamp(now time.Time) string {
	return FormatStamp(StartOfWeek(now))
}

func ParseStamp(s string) (time.Time, error) {
	if !IsWeekStamp(s) {
		return time.Time{}, ErrInvalidWeekStamp
	}
	t, err := time.ParseInLocation(StampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidWeekStamp
	}
	return t, nil
}

// IsWeekStamp reports whether s looks like a date-stamped week key. Used by
// the legacy-cache sweep to pick migratable keys.
func IsWeekStamp(s string) bool {
	return stampPattern.MatchString(s)
}

// WeekLabel renders the human label for a week, e.g. "18 Aug → 24 Aug".
func WeekLabel(weekStamp string) string {
	start, err := ParseStamp(weekStamp)
	if err != nil {
		return weekStamp
	}
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s → %s", start.Format("02 Jan"), end.Format("02 Jan"))
}

// WeekKey addresses one profile's snapshot for one week.
type WeekKey struct {
	ProfileID string
	WeekStamp string
}

// DocKey is the document-store key for this week.
func (k WeekKey) DocKey() string {
	return k.ProfileID + "_" + k.WeekStamp
}

// WeekMode is the edit window of a week relative to the current one: past
// weeks are read only, future weeks allow picking but not progress.
type WeekMode int

const (
	WeekPast WeekMode = iota
	WeekCurrent
	WeekFuture
)

func ModeFor(weekStamp string, now time.Time) (WeekMode, error) {
	start, err := ParseStamp(weekStamp)
	if err != nil {
		return WeekCurrent, err
	}
	current := StartOfWeek(now)
	switch {
	case start.Before(current):
		return WeekPast, nil
	case start.After(current):
		return WeekFuture, nil
	default:
		return WeekCurrent, nil
	}
}

// WeekDocument is the persisted full-category snapshot for a WeekKey.
type WeekDocument struct {
	ProfileID  string     `json:"profileId"`
	WeekStamp  string     `json:"weekStamp"`
	Categories []Category `json:"categories"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (d *WeekDocument) Key() WeekKey {
	return WeekKey{ProfileID: d.ProfileID, WeekStamp: d.WeekStamp}
}
