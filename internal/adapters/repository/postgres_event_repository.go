package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrDuplicateEvent = errors.New("event already recorded")

// PostgresEventRepository is the append-only interaction event log.
type PostgresEventRepository struct {
	db *sqlx.DB
}

func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Append(ctx context.Context, event *domain.WeekEvent) error {
	query := `
        INSERT INTO events (id, profile_id, week_stamp, type, created_at)
        VALUES (:id, :profile_id, :week_stamp, :type, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("repository: event insert failed: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) ListByWeek(ctx context.Context, profileID, weekStamp string) ([]*domain.WeekEvent, error) {
	query := `
        SELECT id, profile_id, week_stamp, type, created_at
        FROM events
        WHERE profile_id = $1 AND week_stamp = $2
        ORDER BY created_at ASC`

	var events []*domain.WeekEvent
	if err := r.db.SelectContext(ctx, &events, query, profileID, weekStamp); err != nil {
		return nil, fmt.Errorf("repository: event listing failed: %w", err)
	}
	return events, nil
}
