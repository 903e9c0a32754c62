package bus_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pulse/pkg/bus"
	"github.com/dmitrymomot/pulse/pkg/logger"
	pulseredis "github.com/dmitrymomot/pulse/pkg/redis"
)

func testConfig() bus.Config {
	cfg := bus.DefaultConfig()
	cfg.Partitions = 2
	cfg.BlockTimeout = 50 * time.Millisecond
	cfg.HealthInterval = 0
	cfg.ConsumerName = "test-consumer"
	return cfg
}

func newClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStreamProducer_SendRoutesByKey(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := testConfig()
	p := bus.NewStreamProducer(newClient(t, mr), cfg, logger.Discard())

	ctx := context.Background()
	require.NoError(t, p.Send(ctx, "user-events", bus.Record{Key: "u2", Type: "user.follow", Value: []byte(`{"a":1}`)}))
	require.NoError(t, p.Send(ctx, "user-events", bus.Record{Key: "u2", Type: "user.follow", Value: []byte(`{"a":2}`)}))

	stream := bus.StreamName(cfg.StreamPrefix, "user-events", bus.PartitionFor("u2", cfg.Partitions))
	entries, err := mr.Stream(stream)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Values, `{"a":1}`)
	assert.Contains(t, entries[1].Values, `{"a":2}`)
}

func TestStreamProducer_SendValidation(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	p := bus.NewStreamProducer(newClient(t, mr), testConfig(), logger.Discard())

	assert.ErrorIs(t, p.Send(context.Background(), "", bus.Record{Key: "k"}), bus.ErrEmptyTopic)
	assert.ErrorIs(t, p.Send(context.Background(), "t", bus.Record{}), bus.ErrEmptyKey)
}

func TestStreamProducer_CloseClosesDone(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	p := bus.NewStreamProducer(client, testConfig(), logger.Discard())

	require.NoError(t, p.Close())
	select {
	case <-p.Done():
	default:
		t.Fatal("done channel not closed")
	}
	assert.ErrorIs(t, p.Send(context.Background(), "t", bus.Record{Key: "k"}), bus.ErrProducerClosed)
	assert.NoError(t, p.Close())
}

func TestStreamProducer_DetectsLostConnection(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	cfg := testConfig()
	cfg.HealthInterval = 20 * time.Millisecond
	p := bus.NewStreamProducer(client, cfg, logger.Discard())
	t.Cleanup(func() { _ = p.Close() })

	mr.Close()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not report connection loss")
	}
}

func TestRedisDialer_Dial(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	d := bus.NewRedisDialer(pulseredis.Config{
		ConnectionURL: "redis://" + mr.Addr(),
		RetryAttempts: 1,
	}, testConfig(), bus.WithDialerLogger(logger.Discard()))

	p, err := d.Dial(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.Send(context.Background(), "post-events", bus.Record{Key: "p1", Type: "post.like", Value: []byte("{}")}))
}

func TestStreamReader_ReadAndAck(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := newClient(t, mr)
	cfg := testConfig()
	ctx := context.Background()

	r, err := bus.NewStreamReader(client, cfg, "user-events")
	require.NoError(t, err)
	require.NoError(t, r.EnsureGroups(ctx))
	require.NoError(t, r.EnsureGroups(ctx), "creating groups twice must be a no-op")

	p := bus.NewStreamProducer(client, cfg, logger.Discard())
	require.NoError(t, p.Send(ctx, "user-events", bus.Record{Key: "u2", Type: "user.follow", Value: []byte("first")}))
	require.NoError(t, p.Send(ctx, "user-events", bus.Record{Key: "u2", Type: "user.follow", Value: []byte("second")}))

	part := r.Partitions()[bus.PartitionFor("u2", cfg.Partitions)]
	msgs, err := r.Read(ctx, part)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "u2", msgs[0].Key)
	assert.Equal(t, "user.follow", msgs[0].Type)
	assert.Equal(t, []byte("first"), msgs[0].Value)
	assert.Equal(t, []byte("second"), msgs[1].Value)

	for _, m := range msgs {
		require.NoError(t, r.Ack(ctx, m))
	}

	msgs, err = r.Read(ctx, part)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestStreamReader_RedeliversPendingOnRestart(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := newClient(t, mr)
	cfg := testConfig()
	ctx := context.Background()

	first, err := bus.NewStreamReader(client, cfg, "post-events")
	require.NoError(t, err)
	require.NoError(t, first.EnsureGroups(ctx))

	p := bus.NewStreamProducer(client, cfg, logger.Discard())
	require.NoError(t, p.Send(ctx, "post-events", bus.Record{Key: "p1", Type: "post.like", Value: []byte("x")}))

	part := first.Partitions()[bus.PartitionFor("p1", cfg.Partitions)]
	msgs, err := first.Read(ctx, part)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// Same consumer name, fresh reader: the unacknowledged entry comes back.
	second, err := bus.NewStreamReader(client, cfg, "post-events")
	require.NoError(t, err)
	again, err := second.Read(ctx, part)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, msgs[0].ID, again[0].ID)
}

func TestStreamReader_ClaimsPendingOfPreviousConsumer(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := newClient(t, mr)
	cfg := testConfig()
	cfg.ConsumerName = ""
	cfg.ClaimMinIdle = 0
	ctx := context.Background()

	first, err := bus.NewStreamReader(client, cfg, "post-events")
	require.NoError(t, err)
	require.NoError(t, first.EnsureGroups(ctx))

	p := bus.NewStreamProducer(client, cfg, logger.Discard())
	require.NoError(t, p.Send(ctx, "post-events", bus.Record{Key: "p1", Type: "post.like", Value: []byte("a")}))
	require.NoError(t, p.Send(ctx, "post-events", bus.Record{Key: "p1", Type: "post.like", Value: []byte("b")}))

	part := first.Partitions()[bus.PartitionFor("p1", cfg.Partitions)]
	msgs, err := first.Read(ctx, part)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.NoError(t, first.Ack(ctx, msgs[0]))

	// A restarted process gets a new generated name and still sees the
	// entry the previous one never acknowledged.
	second, err := bus.NewStreamReader(client, cfg, "post-events")
	require.NoError(t, err)
	require.NotEqual(t, first.Consumer(), second.Consumer())

	again, err := second.Read(ctx, part)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, msgs[1].ID, again[0].ID)
	assert.Equal(t, []byte("b"), again[0].Value)

	require.NoError(t, second.Ack(ctx, again[0]))
	pending, err := client.XPending(ctx, part.Stream, cfg.Group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestStreamReader_LeavesFreshPendingOfOtherConsumers(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := newClient(t, mr)
	cfg := testConfig()
	cfg.ConsumerName = ""
	cfg.ClaimMinIdle = time.Hour
	ctx := context.Background()

	first, err := bus.NewStreamReader(client, cfg, "post-events")
	require.NoError(t, err)
	require.NoError(t, first.EnsureGroups(ctx))

	p := bus.NewStreamProducer(client, cfg, logger.Discard())
	require.NoError(t, p.Send(ctx, "post-events", bus.Record{Key: "p1", Type: "post.like", Value: []byte("a")}))

	part := first.Partitions()[bus.PartitionFor("p1", cfg.Partitions)]
	msgs, err := first.Read(ctx, part)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	second, err := bus.NewStreamReader(client, cfg, "post-events")
	require.NoError(t, err)
	again, err := second.Read(ctx, part)
	require.NoError(t, err)
	assert.Empty(t, again, "entry still in flight at another consumer")
}

func TestNewStreamReader_Validation(t *testing.T) {
	t.Parallel()

	_, err := bus.NewStreamReader(nil, testConfig(), "t")
	assert.ErrorIs(t, err, bus.ErrNilClient)

	mr := miniredis.RunT(t)
	_, err = bus.NewStreamReader(newClient(t, mr), testConfig())
	assert.ErrorIs(t, err, bus.ErrNoTopics)

	cfg := testConfig()
	cfg.ConsumerName = ""
	r, err := bus.NewStreamReader(newClient(t, mr), cfg, "t")
	require.NoError(t, err)
	assert.NotEmpty(t, r.Consumer())
}
