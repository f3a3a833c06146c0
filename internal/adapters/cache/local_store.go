package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.LocalStore = (*RedisLocalStore)(nil)

// Key layout mirrors the legacy client cache: week snapshots live directly
// under "goal-challenge:{weekStamp}" so pre-existing entries stay readable.
const (
	legacyPrefix = "goal-challenge:"
	profileIDKey = legacyPrefix + "profileId"
	flagPrefix   = legacyPrefix + "flag:"
)

// RedisLocalStore is the local fallback cache backing week-save degradation,
// legacy week snapshots and the one-time routine flags. Malformed entries
// read as absent, never as an error.
type RedisLocalStore struct {
	client *redis.Client
}

func NewRedisLocalStore(client *redis.Client) *RedisLocalStore {
	return &RedisLocalStore{client: client}
}

func weekKey(weekStamp string) string {
	return legacyPrefix + weekStamp
}

func (s *RedisLocalStore) GetWeek(ctx context.Context, weekStamp string) ([]domain.Category, error) {
	val, err := s.client.Get(ctx, weekKey(weekStamp)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrLocalMiss
		}
		return nil, err
	}

	var categories []domain.Category
	if err := json.Unmarshal([]byte(val), &categories); err != nil {
		log.Printf("[CACHE] Malformed local week %s, treating as absent", weekStamp)
		return nil, domain.ErrLocalMiss
	}
	return categories, nil
}

func (s *RedisLocalStore) PutWeek(ctx context.Context, weekStamp string, categories []domain.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, weekKey(weekStamp), data, 0).Err()
}

func (s *RedisLocalStore) DeleteWeek(ctx context.Context, weekStamp string) error {
	return s.client.Del(ctx, weekKey(weekStamp)).Err()
}

// ListWeekStamps scans the legacy namespace and returns only the keys that
// look like week stamps, skipping the profile id and flag entries that share
// the prefix.
func (s *RedisLocalStore) ListWeekStamps(ctx context.Context) ([]string, error) {
	var stamps []string

	iter := s.client.Scan(ctx, 0, legacyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		suffix := strings.TrimPrefix(iter.Val(), legacyPrefix)
		if domain.IsWeekStamp(suffix) {
			stamps = append(stamps, suffix)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return stamps, nil
}

func (s *RedisLocalStore) GetFlag(ctx context.Context, name string) (bool, error) {
	val, err := s.client.Get(ctx, flagPrefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val == "1", nil
}

func (s *RedisLocalStore) SetFlag(ctx context.Context, name string) error {
	return s.client.Set(ctx, flagPrefix+name, "1", 0).Err()
}

func (s *RedisLocalStore) GetProfileID(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, profileIDKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrLocalMiss
		}
		return "", err
	}
	return val, nil
}

func (s *RedisLocalStore) SetProfileID(ctx context.Context, id string) error {
	return s.client.Set(ctx, profileIDKey, id, 0).Err()
}
