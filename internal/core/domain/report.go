package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrReportNotFound   = errors.New("weekly report not found")
	ErrReportEmpty      = errors.New("generated report is empty")
	ErrReportGeneration = errors.New("report generation failed")
)

// SavedWeeklyReport is one generated narrative for a WeekKey. History rows
// are immutable; the separate "latest" record is overwritten per generation.
type SavedWeeklyReport struct {
	ID        string        `json:"id,omitempty"`
	ProfileID string        `json:"profileId"`
	WeekStamp string        `json:"weekStamp"`
	Report    string        `json:"report"`
	Metrics   WeeklyMetrics `json:"metrics"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ReportProfile is the slice of identity the generator payload carries.
type ReportProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DayLabel pairs a day name with its activity flag for the report payload.
type DayLabel struct {
	Day    string `json:"day"`
	Active bool   `json:"active"`
}

// ReportAnalytics is the pre-digested analytics block sent alongside raw
// categories and metrics so the generator does not have to re-derive them.
type ReportAnalytics struct {
	WeekLabel           string               `json:"weekLabel"`
	CompletionPercent   int                  `json:"completionPercent"`
	CompletedPicked     int                  `json:"completedPicked"`
	TotalPicked         int                  `json:"totalPicked"`
	ActiveDays          int                  `json:"activeDays"`
	LongestStreak       int                  `json:"longestStreak"`
	DayMapLabels        []DayLabel           `json:"dayMapLabels"`
	MostActive          []CategoryPickedStat `json:"mostActive"`
	NeedsImprovement    []CategoryPickedStat `json:"needsImprovement"`
	TimeOfDayHistogram  *TimeOfDayHistogram  `json:"timeOfDayHistogram,omitempty"`
	TotalEvents         int                  `json:"totalEvents"`
	ActiveDaysViaEvents int                  `json:"activeDaysViaEvents"`
}

// ReportRequest is the structured payload POSTed to the external generator.
type ReportRequest struct {
	WeekStamp  string           `json:"weekStamp"`
	Profile    ReportProfile    `json:"profile"`
	Categories []Category       `json:"categories"`
	Metrics    WeeklyMetrics    `json:"metrics"`
	Analytics  *ReportAnalytics `json:"analytics,omitempty"`
}

var fileNameSpaces = regexp.MustCompile(`\s+`)

// ReportFileName is the download name for a week's report, built from the
// profile name and week stamp.
func ReportFileName(profileName, weekStamp string) string {
	name := strings.TrimSpace(profileName)
	if name == "" {
		name = "user"
	}
	name = strings.ToLower(fileNameSpaces.ReplaceAllString(name, "_"))
	return "goal-challenge_report_" + name + "_" + weekStamp + ".md"
}
