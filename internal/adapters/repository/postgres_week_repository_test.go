package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "goals_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "goals_db"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	return db
}

func cleanupWeeks(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE weekly_goals, weekly_templates CASCADE")
	require.NoError(t, err, "Failed to clean up week tables")
}

func weekFixture(t *testing.T, profileID, stamp string) *domain.WeekDocument {
	t.Helper()
	goal, err := domain.NewGoal("Run 5k")
	require.NoError(t, err)
	goal.Picked = true
	cat, err := domain.NewCategory("Fitness", goal)
	require.NoError(t, err)

	return &domain.WeekDocument{
		ProfileID:  profileID,
		WeekStamp:  stamp,
		Categories: []domain.Category{cat},
		UpdatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestPostgresWeekRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanupWeeks(t, db)
	defer cleanupWeeks(t, db)

	repo := NewPostgresWeekRepository(db)
	ctx := context.Background()

	profileID := "week-repo-test-profile"
	stamp := domain.CurrentWeekStamp(time.Now())

	t.Run("Get on a missing document", func(t *testing.T) {
		_, err := repo.Get(ctx, profileID, stamp)
		assert.ErrorIs(t, err, domain.ErrWeekNotFound)
	})

	t.Run("Upsert then Get round trip", func(t *testing.T) {
		doc := weekFixture(t, profileID, stamp)
		require.NoError(t, repo.Upsert(ctx, doc))

		got, err := repo.Get(ctx, profileID, stamp)
		require.NoError(t, err)
		assert.Equal(t, profileID, got.ProfileID)
		assert.Equal(t, stamp, got.WeekStamp)
		require.Len(t, got.Categories, 1)
		assert.Equal(t, "Fitness", got.Categories[0].Name)
		require.Len(t, got.Categories[0].Goals, 1)
		assert.True(t, got.Categories[0].Goals[0].Picked)
	})

	t.Run("Upsert overwrites the snapshot", func(t *testing.T) {
		doc := weekFixture(t, profileID, stamp)
		doc.Categories[0].Name = "Endurance"
		require.NoError(t, repo.Upsert(ctx, doc))

		got, err := repo.Get(ctx, profileID, stamp)
		require.NoError(t, err)
		require.Len(t, got.Categories, 1)
		assert.Equal(t, "Endurance", got.Categories[0].Name)
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, profileID, stamp)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.Exists(ctx, "nobody", stamp)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ListStamps is ascending per profile", func(t *testing.T) {
		earlier := domain.CurrentWeekStamp(time.Now().AddDate(0, 0, -7))
		require.NoError(t, repo.Upsert(ctx, weekFixture(t, profileID, earlier)))
		require.NoError(t, repo.Upsert(ctx, weekFixture(t, "someone-else", earlier)))

		stamps, err := repo.ListStamps(ctx, profileID)
		require.NoError(t, err)
		assert.Equal(t, []string{earlier, stamp}, stamps)
	})
}

func TestPostgresTemplateRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanupWeeks(t, db)
	defer cleanupWeeks(t, db)

	repo := NewPostgresTemplateRepository(db)
	ctx := context.Background()

	profileID := "template-repo-test-profile"

	t.Run("Get on a missing template", func(t *testing.T) {
		_, err := repo.Get(ctx, profileID)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("Put then Get round trip", func(t *testing.T) {
		goal, err := domain.NewGoal("Sketch daily")
		require.NoError(t, err)
		cat, err := domain.NewCategory("Creativity", goal)
		require.NoError(t, err)

		require.NoError(t, repo.Put(ctx, profileID, []domain.Category{cat}))

		got, err := repo.Get(ctx, profileID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Creativity", got[0].Name)
	})
}
