package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.WeekRepository = (*CachedWeekRepository)(nil)

const weekCacheTTL = 30 * time.Minute

// CachedWeekRepository is a cache-aside decorator over the primary week
// store. Redis problems never fail a request; they just cost the cache.
type CachedWeekRepository struct {
	next  domain.WeekRepository
	cache *redis.Client
}

func NewCachedWeekRepository(next domain.WeekRepository, cache *redis.Client) *CachedWeekRepository {
	return &CachedWeekRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedWeekRepository) cacheKey(profileID, weekStamp string) string {
	return fmt.Sprintf("week:%s_%s", profileID, weekStamp)
}

func (r *CachedWeekRepository) invalidate(ctx context.Context, profileID, weekStamp string) {
	if err := r.cache.Del(ctx, r.cacheKey(profileID, weekStamp)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate week %s_%s: %v", profileID, weekStamp, err)
	}
}

func (r *CachedWeekRepository) Get(ctx context.Context, profileID, weekStamp string) (*domain.WeekDocument, error) {
	key := r.cacheKey(profileID, weekStamp)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var doc domain.WeekDocument
		if err := json.Unmarshal([]byte(val), &doc); err == nil {
			return &doc, nil
		}

		log.Printf("[CACHE] Corrupted week data at %s, cleaning up key", key)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	doc, err := r.next.Get(ctx, profileID, weekStamp)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(doc); err == nil {
		if setErr := r.cache.Set(ctx, key, data, weekCacheTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return doc, nil
}

func (r *CachedWeekRepository) Upsert(ctx context.Context, doc *domain.WeekDocument) error {
	if err := r.next.Upsert(ctx, doc); err != nil {
		return err
	}
	r.invalidate(ctx, doc.ProfileID, doc.WeekStamp)
	return nil
}

func (r *CachedWeekRepository) Exists(ctx context.Context, profileID, weekStamp string) (bool, error) {
	if n, err := r.cache.Exists(ctx, r.cacheKey(profileID, weekStamp)).Result(); err == nil && n > 0 {
		return true, nil
	}
	return r.next.Exists(ctx, profileID, weekStamp)
}

func (r *CachedWeekRepository) ListStamps(ctx context.Context, profileID string) ([]string, error) {
	return r.next.ListStamps(ctx, profileID)
}
