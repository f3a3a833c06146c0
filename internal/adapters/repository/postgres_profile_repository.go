package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	query := `
        SELECT name, age, sex, email, blood_group, marital_status, occupation, photo_url, updated_at
        FROM profiles
        WHERE profile_id = $1`

	var profile domain.Profile
	if err := r.db.GetContext(ctx, &profile, query, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: profile scan error: %w", err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) Upsert(ctx context.Context, profileID string, profile *domain.Profile) error {
	query := `
        INSERT INTO profiles (profile_id, name, age, sex, email, blood_group, marital_status, occupation, photo_url, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (profile_id) DO UPDATE SET
            name = EXCLUDED.name,
            age = EXCLUDED.age,
            sex = EXCLUDED.sex,
            email = EXCLUDED.email,
            blood_group = EXCLUDED.blood_group,
            marital_status = EXCLUDED.marital_status,
            occupation = EXCLUDED.occupation,
            photo_url = EXCLUDED.photo_url,
            updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		profileID, profile.Name, profile.Age, profile.Sex, profile.Email,
		profile.BloodGroup, profile.MaritalStatus, profile.Occupation,
		profile.PhotoURL, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: profile upsert failed: %w", err)
	}
	return nil
}
