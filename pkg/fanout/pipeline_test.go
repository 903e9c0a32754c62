package fanout_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pulse/pkg/bus"
	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/fanout"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
	"github.com/dmitrymomot/pulse/pkg/publisher"
	"github.com/dmitrymomot/pulse/pkg/realtime"
	pulseredis "github.com/dmitrymomot/pulse/pkg/redis"
	"github.com/dmitrymomot/pulse/pkg/relevance"
)

// TestPipeline_FollowReachesRecipient wires publisher, Redis Streams bus,
// consumer, storage and both bridge ports together.
func TestPipeline_FollowReachesRecipient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	busCfg := bus.DefaultConfig()
	busCfg.Partitions = 2
	busCfg.BlockTimeout = 20 * time.Millisecond
	busCfg.HealthInterval = 0

	// Bridge, with the notifier relaying through the internal port.
	rtCfg := realtime.DefaultConfig()
	rtCfg.ProducerToken = "secret"
	rtCfg.PingInterval = 0
	bridge := realtime.NewBridge(realtime.WithConfig(rtCfg), realtime.WithLogger(logger.Discard()))
	clientSrv := httptest.NewServer(bridge.ClientHandler())
	internalSrv := httptest.NewServer(bridge.ProducerHandler())
	t.Cleanup(clientSrv.Close)
	t.Cleanup(internalSrv.Close)

	relay := realtime.NewProducerClient("ws"+strings.TrimPrefix(internalSrv.URL, "http"),
		realtime.WithToken("secret"),
		realtime.WithAckTimeout(time.Second),
		realtime.WithProducerLogger(logger.Discard()),
	)
	t.Cleanup(func() { _ = relay.Close() })

	// Notifier side.
	storage := notifications.NewMemoryStorage()
	manager := notifications.NewManager(storage, relay)
	gate, err := relevance.NewGate(relevance.StaticScorer(relevance.MaxScore))
	require.NoError(t, err)
	proc, err := fanout.NewProcessor(manager, gate)
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	reader, err := bus.NewStreamReader(client, busCfg, string(event.TopicUserEvents))
	require.NoError(t, err)
	require.NoError(t, reader.EnsureGroups(ctx))
	consumer, err := fanout.NewConsumer(reader, proc, fanout.WithLogger(logger.Discard()))
	require.NoError(t, err)
	require.NoError(t, consumer.Start(ctx))
	t.Cleanup(func() { _ = consumer.Stop() })

	// Recipient's browser.
	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ws, _, err := websocket.Dial(dialCtx, "ws"+strings.TrimPrefix(clientSrv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.CloseNow() })
	require.NoError(t, wsjson.Write(dialCtx, ws, realtime.Frame{Event: realtime.EventAuthenticate, Data: json.RawMessage(`"u2"`)}))
	var joined realtime.Frame
	require.NoError(t, wsjson.Read(dialCtx, ws, &joined))
	require.Equal(t, realtime.EventJoined, joined.Event)

	// API side.
	pub, err := publisher.New(bus.NewRedisDialer(pulseredis.Config{
		ConnectionURL: "redis://" + mr.Addr(),
		RetryAttempts: 1,
	}, busCfg, bus.WithDialerLogger(logger.Discard())), publisher.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	require.True(t, pub.Publish(ctx, event.TopicUserEvents, followEvent()))

	var frame realtime.Frame
	require.NoError(t, wsjson.Read(dialCtx, ws, &frame))
	require.Equal(t, realtime.EventNotification, frame.Event)

	var got notifications.Notification
	require.NoError(t, json.Unmarshal(frame.Data, &got))
	assert.Equal(t, "u2", got.Recipient)
	assert.Equal(t, "u1", got.Sender)
	assert.Equal(t, notifications.TypeFollow, got.Type)
	assert.Equal(t, "alice started following you", got.Message)

	stored, err := storage.List(ctx, "u2", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, got.ID, stored[0].ID)
}
