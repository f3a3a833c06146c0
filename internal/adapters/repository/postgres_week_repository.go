package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresWeekRepository stores week documents as JSONB category snapshots
// keyed by "{profileId}_{weekStamp}".
type PostgresWeekRepository struct {
	db *sqlx.DB
}

func NewPostgresWeekRepository(db *sqlx.DB) *PostgresWeekRepository {
	return &PostgresWeekRepository{db: db}
}

func (r *PostgresWeekRepository) Get(ctx context.Context, profileID, weekStamp string) (*domain.WeekDocument, error) {
	query := `
        SELECT profile_id, week_stamp, categories, updated_at
        FROM weekly_goals
        WHERE doc_key = $1`

	key := domain.WeekKey{ProfileID: profileID, WeekStamp: weekStamp}

	var doc domain.WeekDocument
	var categoriesJSON []byte

	row := r.db.QueryRowContext(ctx, query, key.DocKey())
	err := row.Scan(&doc.ProfileID, &doc.WeekStamp, &categoriesJSON, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWeekNotFound
		}
		return nil, fmt.Errorf("repository: week scan error: %w", err)
	}

	if err := json.Unmarshal(categoriesJSON, &doc.Categories); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal categories: %w", err)
	}

	return &doc, nil
}

func (r *PostgresWeekRepository) Upsert(ctx context.Context, doc *domain.WeekDocument) error {
	categoriesJSON, err := json.Marshal(doc.Categories)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal categories: %w", err)
	}

	query := `
        INSERT INTO weekly_goals (doc_key, profile_id, week_stamp, categories, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (doc_key) DO UPDATE SET
            categories = EXCLUDED.categories,
            updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		doc.Key().DocKey(), doc.ProfileID, doc.WeekStamp, categoriesJSON, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: week upsert failed: %w", err)
	}
	return nil
}

func (r *PostgresWeekRepository) Exists(ctx context.Context, profileID, weekStamp string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM weekly_goals WHERE doc_key = $1)`

	key := domain.WeekKey{ProfileID: profileID, WeekStamp: weekStamp}

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key.DocKey()).Scan(&exists); err != nil {
		return false, fmt.Errorf("repository: week existence check failed: %w", err)
	}
	return exists, nil
}

func (r *PostgresWeekRepository) ListStamps(ctx context.Context, profileID string) ([]string, error) {
	query := `
        SELECT week_stamp FROM weekly_goals
        WHERE profile_id = $1
        ORDER BY week_stamp ASC`

	var stamps []string
	if err := r.db.SelectContext(ctx, &stamps, query, profileID); err != nil {
		return nil, fmt.Errorf("repository: week stamp listing failed: %w", err)
	}
	return stamps, nil
}
