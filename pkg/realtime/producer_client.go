package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
)

var _ notifications.Deliverer = (*ProducerClient)(nil)

// ProducerClient publishes to a Bridge through its internal-facing port.
// It connects on first use and again after the connection drops; at most
// one dial is in flight at a time.
type ProducerClient struct {
	url        string
	token      string
	ackTimeout time.Duration
	readLimit  int64
	logger     *slog.Logger

	dialMu sync.Mutex
	ws     *websocket.Conn
	closed bool

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan relayResult
}

type relayResult struct {
	ack RelayAck
	err error
}

type ProducerOption func(*ProducerClient)

func WithToken(token string) ProducerOption {
	return func(p *ProducerClient) {
		p.token = token
	}
}

func WithAckTimeout(d time.Duration) ProducerOption {
	return func(p *ProducerClient) {
		if d > 0 {
			p.ackTimeout = d
		}
	}
}

func WithProducerLogger(l *slog.Logger) ProducerOption {
	return func(p *ProducerClient) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewProducerClient(url string, opts ...ProducerOption) *ProducerClient {
	p := &ProducerClient{
		url:        url,
		ackTimeout: 5 * time.Second,
		readLimit:  65536,
		logger:     slog.Default(),
		pending:    make(map[string]chan relayResult),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishToRoom relays data to room and returns how many clients received it.
func (p *ProducerClient) PublishToRoom(ctx context.Context, room string, data any) (int, error) {
	if room == "" {
		return 0, ErrEmptyRoom
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, errors.Join(ErrEncodeFrame, err)
	}

	ws, err := p.connection(ctx)
	if err != nil {
		return 0, err
	}

	id := uuid.NewString()
	ch := make(chan relayResult, 1)
	p.pendingMu.Lock()
	p.pending[id] = ch
	p.pendingMu.Unlock()
	defer func() {
		p.pendingMu.Lock()
		delete(p.pending, id)
		p.pendingMu.Unlock()
	}()

	msg, err := encodeFrame(EventNotification, RelayRequest{ID: id, Room: room, Data: raw})
	if err != nil {
		return 0, err
	}

	p.writeMu.Lock()
	wctx, cancel := context.WithTimeout(ctx, p.ackTimeout)
	err = ws.Write(wctx, websocket.MessageText, msg)
	cancel()
	p.writeMu.Unlock()
	if err != nil {
		p.drop(ws, err)
		return 0, errors.Join(ErrConnectionLost, err)
	}

	timer := time.NewTimer(p.ackTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return 0, res.err
		}
		return res.ack.Delivered, nil
	case <-timer.C:
		return 0, ErrAckTimeout
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Deliver pushes n to its recipient's room.
func (p *ProducerClient) Deliver(ctx context.Context, n notifications.Notification) error {
	_, err := p.PublishToRoom(ctx, UserRoom(n.Recipient), n)
	return err
}

// Close drops the connection; later publishes fail with ErrClientClosed.
func (p *ProducerClient) Close() error {
	p.dialMu.Lock()
	p.closed = true
	ws := p.ws
	p.ws = nil
	p.dialMu.Unlock()

	if ws == nil {
		return nil
	}
	return ws.Close(websocket.StatusNormalClosure, "producer closing")
}

func (p *ProducerClient) connection(ctx context.Context) (*websocket.Conn, error) {
	p.dialMu.Lock()
	defer p.dialMu.Unlock()

	if p.closed {
		return nil, ErrClientClosed
	}
	if p.ws != nil {
		return p.ws, nil
	}

	header := http.Header{}
	if p.token != "" {
		header.Set("Authorization", "Bearer "+p.token)
	}

	dctx, cancel := context.WithTimeout(ctx, p.ackTimeout)
	defer cancel()
	ws, resp, err := websocket.Dial(dctx, p.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w: status %d", err, resp.StatusCode)
		}
		return nil, errors.Join(ErrDialFailed, err)
	}
	ws.SetReadLimit(p.readLimit)

	p.ws = ws
	go p.readLoop(ws)

	p.logger.LogAttrs(ctx, slog.LevelInfo, "connected to notification relay",
		logger.Component("realtime"))
	return ws, nil
}

func (p *ProducerClient) readLoop(ws *websocket.Conn) {
	ctx := context.Background()
	for {
		var f Frame
		if err := wsjson.Read(ctx, ws, &f); err != nil {
			p.drop(ws, err)
			return
		}

		switch f.Event {
		case EventNotificationReceived:
			var ack RelayAck
			if err := json.Unmarshal(f.Data, &ack); err == nil {
				p.resolve(ack.ID, relayResult{ack: ack})
			}
		case EventNotificationError:
			var rerr RelayError
			if err := json.Unmarshal(f.Data, &rerr); err == nil {
				p.resolve(rerr.ID, relayResult{err: fmt.Errorf("%w: %s", ErrRelayFailed, rerr.Error)})
			}
		case EventWelcome:
			p.logger.LogAttrs(ctx, slog.LevelDebug, "relay welcome received", logger.Component("realtime"))
		}
	}
}

func (p *ProducerClient) resolve(id string, res relayResult) {
	p.pendingMu.Lock()
	ch, ok := p.pending[id]
	p.pendingMu.Unlock()
	if ok {
		select {
		case ch <- res:
		default:
		}
	}
}

// drop forgets ws if it is still current and fails every waiting publish.
func (p *ProducerClient) drop(ws *websocket.Conn, cause error) {
	p.dialMu.Lock()
	current := p.ws == ws
	if current {
		p.ws = nil
	}
	closed := p.closed
	p.dialMu.Unlock()

	_ = ws.CloseNow()
	if !current {
		return
	}

	if !closed {
		p.logger.LogAttrs(context.Background(), slog.LevelWarn, "relay connection lost",
			logger.Component("realtime"),
			logger.Error(cause),
		)
	}

	p.pendingMu.Lock()
	for id, ch := range p.pending {
		select {
		case ch <- relayResult{err: ErrConnectionLost}:
		default:
		}
		delete(p.pending, id)
	}
	p.pendingMu.Unlock()
}
