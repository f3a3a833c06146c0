package services

import (
	"context"
	"fmt"
	"log"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

// EventService records interaction events against a WeekKey. Events only
// enrich metrics, so reads degrade to an empty list instead of failing.
type EventService struct {
	events domain.EventRepository
}

func NewEventService(events domain.EventRepository) *EventService {
	return &EventService{
		events: events,
	}
}

func (s *EventService) Record(ctx context.Context, profileID, weekStamp, eventType string) (*domain.WeekEvent, error) {
	event := domain.NewWeekEvent(profileID, weekStamp, eventType)
	event.ID = domain.NewID()

	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("event service: append: %w", err)
	}
	return event, nil
}

// ListByWeek returns the week's events in creation order, or an empty list
// when the log cannot be read.
func (s *EventService) ListByWeek(ctx context.Context, profileID, weekStamp string) []*domain.WeekEvent {
	events, err := s.events.ListByWeek(ctx, profileID, weekStamp)
	if err != nil {
		log.Printf("[EVENT] list failed for %s/%s: %v", profileID, weekStamp, err)
		return nil
	}
	return events
}
