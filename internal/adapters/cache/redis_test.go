package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("Success: connects and pings", func(t *testing.T) {
		mr := miniredis.RunT(t)

		rdb, err := NewRedisClient(mr.Addr(), "", 0)
		require.NoError(t, err)
		defer rdb.Close()

		pong, err := rdb.Ping(context.Background()).Result()
		assert.NoError(t, err)
		assert.Equal(t, "PONG", pong)
	})

	t.Run("Success: round trip with expiry", func(t *testing.T) {
		mr := miniredis.RunT(t)

		rdb, err := NewRedisClient(mr.Addr(), "", 0)
		require.NoError(t, err)
		defer rdb.Close()

		ctx := context.Background()
		require.NoError(t, rdb.Set(ctx, "greeting", "hello", time.Minute).Err())

		val, err := rdb.Get(ctx, "greeting").Result()
		assert.NoError(t, err)
		assert.Equal(t, "hello", val)

		mr.FastForward(2 * time.Minute)

		_, err = rdb.Get(ctx, "greeting").Result()
		assert.ErrorIs(t, err, redis.Nil)
	})

	t.Run("Fail: unreachable address", func(t *testing.T) {
		_, err := NewRedisClient("127.0.0.1:1", "", 0)
		assert.Error(t, err)
	})
}
