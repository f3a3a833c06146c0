package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

const defaultHistoryLimit = 5

// ReportService builds metrics snapshots and drives the external narrative
// generator, persisting results as immutable history plus a per-week
// "latest" record.
type ReportService struct {
	reports   domain.ReportRepository
	events    domain.EventRepository
	generator domain.ReportGenerator
}

func NewReportService(reports domain.ReportRepository, events domain.EventRepository, generator domain.ReportGenerator) *ReportService {
	return &ReportService{
		reports:   reports,
		events:    events,
		generator: generator,
	}
}

// BuildMetricsSnapshot derives the week's metrics from its categories and
// whatever events are readable. Event-log failures only cost the interaction
// block, never the snapshot.
func (s *ReportService) BuildMetricsSnapshot(ctx context.Context, profileID, weekStamp string, categories []domain.Category) domain.WeeklyMetrics {
	events, err := s.events.ListByWeek(ctx, profileID, weekStamp)
	if err != nil {
		log.Printf("[REPORT] event read failed for %s/%s, metrics without interactions: %v", profileID, weekStamp, err)
		events = nil
	}
	return domain.ComputeMetrics(categories, events)
}

// NeedsRegeneration reports whether the freshly computed metrics differ from
// the latest saved report's metrics. No saved report always means yes. The
// compare is structural on completion percent, picked counts and the day map.
func (s *ReportService) NeedsRegeneration(latest *domain.SavedWeeklyReport, current domain.WeeklyMetrics) bool {
	if latest == nil {
		return true
	}

	saved := latest.Metrics
	if saved.CompletionPercent != current.CompletionPercent ||
		saved.CompletedPicked != current.CompletedPicked ||
		saved.TotalPicked != current.TotalPicked {
		return true
	}

	if len(saved.DayMap) != len(current.DayMap) {
		return true
	}
	for i := range saved.DayMap {
		if saved.DayMap[i] != current.DayMap[i] {
			return true
		}
	}
	return false
}

// Generate calls the external generator and persists the produced narrative.
// A generation failure persists nothing and surfaces to the caller; there is
// no retry here.
func (s *ReportService) Generate(ctx context.Context, key domain.WeekKey, profile domain.ReportProfile, categories []domain.Category, metrics domain.WeeklyMetrics) (*domain.SavedWeeklyReport, error) {
	req := domain.ReportRequest{
		WeekStamp:  key.WeekStamp,
		Profile:    profile,
		Categories: categories,
		Metrics:    metrics,
		Analytics:  buildAnalytics(key.WeekStamp, categories, metrics),
	}

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReportGeneration, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrReportEmpty
	}

	now := time.Now().UTC()
	report := &domain.SavedWeeklyReport{
		ID:        domain.NewID(),
		ProfileID: key.ProfileID,
		WeekStamp: key.WeekStamp,
		Report:    text,
		Metrics:   metrics,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persist(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// persist appends the history record and upserts the latest pointer. The
// latest write is attempted even when the history append fails: a duplicate
// history row is tolerable, a stale latest record is not.
func (s *ReportService) persist(ctx context.Context, report *domain.SavedWeeklyReport) error {
	if err := s.reports.AppendHistory(ctx, report); err != nil {
		log.Printf("[REPORT] history append failed for %s/%s: %v", report.ProfileID, report.WeekStamp, err)
	}

	if err := s.reports.UpsertLatest(ctx, report); err != nil {
		return fmt.Errorf("report service: latest upsert: %w", err)
	}
	return nil
}

// LoadLatest returns the latest saved report for the key, or nil when none
// has been generated yet.
func (s *ReportService) LoadLatest(ctx context.Context, key domain.WeekKey) (*domain.SavedWeeklyReport, error) {
	report, err := s.reports.GetLatest(ctx, key.ProfileID, key.WeekStamp)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("report service: latest read: %w", err)
	}
	return report, nil
}

// LoadHistory returns the newest-first report history, bounded by max.
func (s *ReportService) LoadHistory(ctx context.Context, key domain.WeekKey, max int) ([]*domain.SavedWeeklyReport, error) {
	if max <= 0 {
		max = defaultHistoryLimit
	}
	return s.reports.ListHistory(ctx, key.ProfileID, key.WeekStamp, max)
}

func buildAnalytics(weekStamp string, categories []domain.Category, metrics domain.WeeklyMetrics) *domain.ReportAnalytics {
	labels := make([]domain.DayLabel, 0, domain.DaysPerWeek)
	for i, name := range domain.DayNames {
		active := i < len(metrics.DayMap) && metrics.DayMap[i]
		labels = append(labels, domain.DayLabel{Day: name, Active: active})
	}

	stats := domain.PerCategoryPickedStats(categories)
	analytics := &domain.ReportAnalytics{
		WeekLabel:         domain.WeekLabel(weekStamp),
		CompletionPercent: metrics.CompletionPercent,
		CompletedPicked:   metrics.CompletedPicked,
		TotalPicked:       metrics.TotalPicked,
		ActiveDays:        metrics.ActiveDays,
		LongestStreak:     metrics.LongestStreak,
		DayMapLabels:      labels,
		MostActive:        domain.MostActiveCategories(stats, 3),
		NeedsImprovement:  domain.NeedsImprovementCategories(stats, 3),
	}

	if metrics.Interactions != nil {
		hist := metrics.Interactions.TimeOfDay
		analytics.TimeOfDayHistogram = &hist
		analytics.TotalEvents = metrics.Interactions.TotalEvents
		analytics.ActiveDaysViaEvents = metrics.Interactions.ActiveDaysViaEvents
	}

	return analytics
}
