// Package redis connects to the Redis server that carries the pulse event bus.
//
// Connect dials with bounded exponential backoff: up to RetryAttempts pings,
// waiting RetryInterval after the first failure and doubling the wait up to
// MaxRetryInterval. This is the only retry policy on the publish path; the
// publisher itself never re-implements it.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err // errors.Is(err, redis.ErrRedisNotReady)
//	}
//	defer client.Close()
//
// Healthcheck returns a readiness probe suitable for httpserver.HealthCheckHandler.
package redis
