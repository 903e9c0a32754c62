package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pulse/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Run("connects to running server", func(t *testing.T) {
		srv := miniredis.RunT(t)

		client, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://" + srv.Addr() + "/0",
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		defer client.Close()

		require.NoError(t, redis.Healthcheck(client)(context.Background()))
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "://nope"})
		require.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("gives up after retry attempts", func(t *testing.T) {
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		start := time.Now()
		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:    "redis://" + addr + "/0",
			RetryAttempts:    3,
			RetryInterval:    10 * time.Millisecond,
			MaxRetryInterval: 15 * time.Millisecond,
			ConnectTimeout:   2 * time.Second,
		})
		require.ErrorIs(t, err, redis.ErrRedisNotReady)
		// 10ms + 15ms of backoff between three attempts
		assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	})

	t.Run("healthcheck reports closed server", func(t *testing.T) {
		srv := miniredis.RunT(t)
		client, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL: "redis://" + srv.Addr() + "/0",
			RetryAttempts: 1,
		})
		require.NoError(t, err)
		defer client.Close()

		srv.Close()
		err = redis.Healthcheck(client)(context.Background())
		require.ErrorIs(t, err, redis.ErrHealthcheckFailed)
	})
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, redis.NextBackoff(100*time.Millisecond, time.Second))
	assert.Equal(t, time.Second, redis.NextBackoff(800*time.Millisecond, time.Second))
	assert.Equal(t, 100*time.Millisecond, redis.NextBackoff(0, time.Second))
}
