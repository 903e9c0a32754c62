package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
	"github.com/dmitrymomot/pulse/pkg/realtime"
)

func newProducerClient(t *testing.T, p *ports, token string) *realtime.ProducerClient {
	t.Helper()
	pc := realtime.NewProducerClient(wsURL(p.internal),
		realtime.WithToken(token),
		realtime.WithAckTimeout(time.Second),
		realtime.WithProducerLogger(logger.Discard()),
	)
	t.Cleanup(func() { _ = pc.Close() })
	return pc
}

func TestProducerClient_Relay(t *testing.T) {
	t.Parallel()

	p := newPorts(t, "secret")
	client := authenticate(t, p, "u2")
	pc := newProducerClient(t, p, "secret")

	n, err := pc.PublishToRoom(context.Background(), "user:u2", map[string]string{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.JSONEq(t, `{"message":"hi"}`, string(read(t, client).Data))

	n, err = pc.PublishToRoom(context.Background(), "user:nobody", map[string]string{"message": "hi"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProducerClient_Deliver(t *testing.T) {
	t.Parallel()

	p := newPorts(t, "")
	client := authenticate(t, p, "u2")
	pc := newProducerClient(t, p, "")

	require.NoError(t, pc.Deliver(context.Background(), notifications.Notification{
		ID: "n1", Recipient: "u2", Type: notifications.TypeFollow, Message: "alice started following you",
	}))
	got := decode[notifications.Notification](t, read(t, client))
	assert.Equal(t, "alice started following you", got.Message)
}

func TestProducerClient_ConcurrentPublishes(t *testing.T) {
	t.Parallel()

	p := newPorts(t, "")
	_ = authenticate(t, p, "u2")
	pc := newProducerClient(t, p, "")

	errs := make(chan error, 10)
	for range 10 {
		go func() {
			_, err := pc.PublishToRoom(context.Background(), "user:u3", map[string]int{"n": 1})
			errs <- err
		}()
	}
	for range 10 {
		assert.NoError(t, <-errs)
	}
}

// droppable wraps a handler so every connection it is serving can be cut.
type droppable struct {
	next    http.Handler
	mu      sync.Mutex
	cancels []context.CancelFunc
}

func (d *droppable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	d.mu.Lock()
	d.cancels = append(d.cancels, cancel)
	d.mu.Unlock()
	defer cancel()
	d.next.ServeHTTP(w, r.WithContext(ctx))
}

func (d *droppable) dropAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cancel := range d.cancels {
		cancel()
	}
	d.cancels = nil
}

func TestProducerClient_ReconnectsAfterServerDrop(t *testing.T) {
	t.Parallel()

	b := realtime.NewBridge(realtime.WithLogger(logger.Discard()))
	h := &droppable{next: b.ProducerHandler()}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	pc := realtime.NewProducerClient(wsURL(srv),
		realtime.WithAckTimeout(time.Second),
		realtime.WithProducerLogger(logger.Discard()),
	)
	t.Cleanup(func() { _ = pc.Close() })
	ctx := context.Background()

	_, err := pc.PublishToRoom(ctx, "user:x", map[string]int{"n": 1})
	require.NoError(t, err)

	h.dropAll()

	// The first publish after a drop may race the close; a later one must succeed.
	require.Eventually(t, func() bool {
		_, err := pc.PublishToRoom(ctx, "user:x", map[string]int{"n": 2})
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.NotEmpty(t, h.cancels, "a new connection was opened")
}

func TestProducerClient_Errors(t *testing.T) {
	t.Parallel()

	p := newPorts(t, "secret")

	bad := newProducerClient(t, p, "wrong")
	_, err := bad.PublishToRoom(context.Background(), "user:1", nil)
	assert.ErrorIs(t, err, realtime.ErrDialFailed)

	pc := newProducerClient(t, p, "secret")
	_, err = pc.PublishToRoom(context.Background(), "", nil)
	assert.ErrorIs(t, err, realtime.ErrEmptyRoom)

	require.NoError(t, pc.Close())
	_, err = pc.PublishToRoom(context.Background(), "user:1", nil)
	assert.ErrorIs(t, err, realtime.ErrClientClosed)
}
