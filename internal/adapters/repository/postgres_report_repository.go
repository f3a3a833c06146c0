package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

// PostgresReportRepository keeps generated narratives in two tables: an
// append-only history and a one-row-per-week "latest" table.
type PostgresReportRepository struct {
	db *sqlx.DB
}

func NewPostgresReportRepository(db *sqlx.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) AppendHistory(ctx context.Context, report *domain.SavedWeeklyReport) error {
	metricsJSON, err := json.Marshal(report.Metrics)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal metrics: %w", err)
	}

	query := `
        INSERT INTO weekly_reports (id, profile_id, week_stamp, report, metrics, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		report.ID, report.ProfileID, report.WeekStamp, report.Report, metricsJSON, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: report history insert failed: %w", err)
	}
	return nil
}

func (r *PostgresReportRepository) UpsertLatest(ctx context.Context, report *domain.SavedWeeklyReport) error {
	metricsJSON, err := json.Marshal(report.Metrics)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal metrics: %w", err)
	}

	key := domain.WeekKey{ProfileID: report.ProfileID, WeekStamp: report.WeekStamp}

	query := `
        INSERT INTO weekly_reports_latest (doc_key, profile_id, week_stamp, report, metrics, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (doc_key) DO UPDATE SET
            report = EXCLUDED.report,
            metrics = EXCLUDED.metrics,
            updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		key.DocKey(), report.ProfileID, report.WeekStamp, report.Report,
		metricsJSON, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: latest report upsert failed: %w", err)
	}
	return nil
}

func (r *PostgresReportRepository) GetLatest(ctx context.Context, profileID, weekStamp string) (*domain.SavedWeeklyReport, error) {
	query := `
        SELECT profile_id, week_stamp, report, metrics, created_at, updated_at
        FROM weekly_reports_latest
        WHERE doc_key = $1`

	key := domain.WeekKey{ProfileID: profileID, WeekStamp: weekStamp}

	var report domain.SavedWeeklyReport
	var metricsJSON []byte

	row := r.db.QueryRowContext(ctx, query, key.DocKey())
	err := row.Scan(&report.ProfileID, &report.WeekStamp, &report.Report,
		&metricsJSON, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("repository: latest report scan error: %w", err)
	}

	if err := json.Unmarshal(metricsJSON, &report.Metrics); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal metrics: %w", err)
	}
	return &report, nil
}

func (r *PostgresReportRepository) ListHistory(ctx context.Context, profileID, weekStamp string, max int) ([]*domain.SavedWeeklyReport, error) {
	query := `
        SELECT id, profile_id, week_stamp, report, metrics, created_at
        FROM weekly_reports
        WHERE profile_id = $1 AND week_stamp = $2
        ORDER BY created_at DESC
        LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, profileID, weekStamp, max)
	if err != nil {
		return nil, fmt.Errorf("repository: report history query failed: %w", err)
	}
	defer rows.Close()

	var reports []*domain.SavedWeeklyReport
	for rows.Next() {
		var report domain.SavedWeeklyReport
		var metricsJSON []byte

		err := rows.Scan(&report.ID, &report.ProfileID, &report.WeekStamp,
			&report.Report, &metricsJSON, &report.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: report history scan error: %w", err)
		}
		if err := json.Unmarshal(metricsJSON, &report.Metrics); err != nil {
			return nil, fmt.Errorf("repository: failed to unmarshal metrics: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: report history rows error: %w", err)
	}
	return reports, nil
}
