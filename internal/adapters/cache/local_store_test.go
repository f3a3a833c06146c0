package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalStore(t *testing.T) (*RedisLocalStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocalStore(client), mr
}

func TestRedisLocalStore_Weeks(t *testing.T) {
	ctx := context.Background()
	store, mr := setupLocalStore(t)

	cats := []domain.Category{{ID: "c1", Name: "Health", Goals: []domain.Goal{
		{ID: "g1", Title: "Run", Picked: true},
	}}}

	t.Run("round trip under the legacy key", func(t *testing.T) {
		require.NoError(t, store.PutWeek(ctx, "2025-08-18", cats))
		assert.True(t, mr.Exists("goal-challenge:2025-08-18"))

		got, err := store.GetWeek(ctx, "2025-08-18")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Health", got[0].Name)
	})

	t.Run("miss on absent stamp", func(t *testing.T) {
		_, err := store.GetWeek(ctx, "2020-01-06")
		assert.ErrorIs(t, err, domain.ErrLocalMiss)
	})

	t.Run("malformed json reads as absent", func(t *testing.T) {
		require.NoError(t, mr.Set("goal-challenge:2025-08-25", "{not json"))
		_, err := store.GetWeek(ctx, "2025-08-25")
		assert.ErrorIs(t, err, domain.ErrLocalMiss)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteWeek(ctx, "2025-08-18"))
		_, err := store.GetWeek(ctx, "2025-08-18")
		assert.ErrorIs(t, err, domain.ErrLocalMiss)
	})
}

func TestRedisLocalStore_ListWeekStamps(t *testing.T) {
	ctx := context.Background()
	store, _ := setupLocalStore(t)

	cats := []domain.Category{{ID: "c1", Name: "Health"}}
	require.NoError(t, store.PutWeek(ctx, "2025-08-11", cats))
	require.NoError(t, store.PutWeek(ctx, "2025-08-18", cats))
	require.NoError(t, store.SetProfileID(ctx, "p1"))
	require.NoError(t, store.SetFlag(ctx, "migrated:p1"))

	stamps, err := store.ListWeekStamps(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2025-08-11", "2025-08-18"}, stamps,
		"profile id and flag keys under the shared prefix are skipped")
}

func TestRedisLocalStore_Flags(t *testing.T) {
	ctx := context.Background()
	store, _ := setupLocalStore(t)

	done, err := store.GetFlag(ctx, "migrated:p1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, store.SetFlag(ctx, "migrated:p1"))

	done, err = store.GetFlag(ctx, "migrated:p1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRedisLocalStore_ProfileID(t *testing.T) {
	ctx := context.Background()
	store, _ := setupLocalStore(t)

	_, err := store.GetProfileID(ctx)
	assert.ErrorIs(t, err, domain.ErrLocalMiss)

	require.NoError(t, store.SetProfileID(ctx, "anon-42"))

	id, err := store.GetProfileID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "anon-42", id)
}
