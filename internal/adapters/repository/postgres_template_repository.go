package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

// PostgresTemplateRepository stores the per-profile category skeleton.
type PostgresTemplateRepository struct {
	db *sqlx.DB
}

func NewPostgresTemplateRepository(db *sqlx.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{db: db}
}

func (r *PostgresTemplateRepository) Get(ctx context.Context, profileID string) ([]domain.Category, error) {
	query := `SELECT categories FROM weekly_templates WHERE profile_id = $1`

	var categoriesJSON []byte
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(&categoriesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("repository: template scan error: %w", err)
	}

	var categories []domain.Category
	if err := json.Unmarshal(categoriesJSON, &categories); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal template: %w", err)
	}
	return categories, nil
}

func (r *PostgresTemplateRepository) Put(ctx context.Context, profileID string, categories []domain.Category) error {
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal template: %w", err)
	}

	query := `
        INSERT INTO weekly_templates (profile_id, categories, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (profile_id) DO UPDATE SET
            categories = EXCLUDED.categories,
            updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query, profileID, categoriesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: template upsert failed: %w", err)
	}
	return nil
}
