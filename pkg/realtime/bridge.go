package realtime

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
)

var _ notifications.Deliverer = (*Bridge)(nil)

// Bridge owns both WebSocket ports and the room registry between them.
type Bridge struct {
	cfg    Config
	rooms  *Rooms
	logger *slog.Logger
}

type Option func(*Bridge)

func WithConfig(cfg Config) Option {
	return func(b *Bridge) {
		b.cfg = cfg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewBridge(opts ...Option) *Bridge {
	b := &Bridge{
		cfg:    DefaultConfig(),
		rooms:  NewRooms(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Rooms exposes the room registry for inspection.
func (b *Bridge) Rooms() *Rooms {
	return b.rooms
}

// PublishToRoom emits a notification frame carrying data to every current
// member of room. An empty room is not an error.
func (b *Bridge) PublishToRoom(ctx context.Context, room string, data any) (int, error) {
	if room == "" {
		return 0, ErrEmptyRoom
	}
	msg, err := encodeFrame(EventNotification, data)
	if err != nil {
		return 0, err
	}

	delivered := b.rooms.publish(room, msg)
	b.logger.LogAttrs(ctx, slog.LevelDebug, "notification relayed",
		logger.Room(room),
		slog.Int("delivered", delivered),
	)
	return delivered, nil
}

// Deliver pushes n to its recipient's room.
func (b *Bridge) Deliver(ctx context.Context, n notifications.Notification) error {
	_, err := b.PublishToRoom(ctx, UserRoom(n.Recipient), n)
	return err
}

// ClientHandler serves the client-facing port.
func (b *Bridge) ClientHandler() http.Handler {
	return http.HandlerFunc(b.serveClient)
}

// ProducerHandler serves the internal-facing port.
func (b *Bridge) ProducerHandler() http.Handler {
	return http.HandlerFunc(b.serveProducer)
}

func (b *Bridge) serveClient(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: b.cfg.AllowedOrigins,
	})
	if err != nil {
		b.logger.LogAttrs(r.Context(), slog.LevelWarn, "client upgrade failed", logger.Error(err))
		return
	}
	if b.cfg.ReadLimit > 0 {
		ws.SetReadLimit(b.cfg.ReadLimit)
	}

	c := newConn(uuid.NewString(), b.cfg.SendBuffer)
	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		b.rooms.remove(c)
		_ = ws.CloseNow()
	}()

	log := b.logger.With(logger.Component("realtime"), logger.ConnID(c.id))
	log.LogAttrs(ctx, slog.LevelDebug, "client connected")

	go b.writeLoop(ctx, cancel, ws, c, log)

	for {
		var f Frame
		if err := wsjson.Read(ctx, ws, &f); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				log.LogAttrs(ctx, slog.LevelDebug, "client read failed", logger.Error(err))
			}
			return
		}
		b.handleClientFrame(ctx, c, f, log)
	}
}

func (b *Bridge) handleClientFrame(ctx context.Context, c *conn, f Frame, log *slog.Logger) {
	var room string
	switch f.Event {
	case EventAuthenticate:
		userID := stringArg(f.Data, "userId")
		if userID == "" {
			b.reply(c, EventError, ErrorPayload{Error: "userId is required"})
			return
		}
		room = UserRoom(userID)
	case EventJoin:
		room = stringArg(f.Data, "room")
		if room == "" {
			b.reply(c, EventError, ErrorPayload{Error: ErrEmptyRoom.Error()})
			return
		}
	default:
		b.reply(c, EventError, ErrorPayload{Error: "unknown event: " + f.Event})
		return
	}

	b.rooms.join(c, room)
	log.LogAttrs(ctx, slog.LevelDebug, "client joined room", logger.Room(room))
	b.reply(c, EventJoined, JoinedPayload{Room: room})
}

func (b *Bridge) reply(c *conn, event string, data any) {
	msg, err := encodeFrame(event, data)
	if err != nil {
		return
	}
	if !c.enqueue(msg) {
		b.rooms.remove(c)
	}
}

// writeLoop is the only writer of ws. It exits and closes the connection
// when the client is dropped from the registry.
func (b *Bridge) writeLoop(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, c *conn, log *slog.Logger) {
	defer cancel()

	var ping <-chan time.Time
	if b.cfg.PingInterval > 0 {
		t := time.NewTicker(b.cfg.PingInterval)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			if ctx.Err() != nil {
				return
			}
			log.LogAttrs(ctx, slog.LevelWarn, "dropping slow client")
			_ = ws.Close(websocket.StatusPolicyViolation, "send buffer full")
			return
		case msg := <-c.send:
			if err := b.write(ctx, ws, msg); err != nil {
				return
			}
		case <-ping:
			pctx, pcancel := context.WithTimeout(ctx, b.writeTimeout())
			err := ws.Ping(pctx)
			pcancel()
			if err != nil {
				return
			}
		}
	}
}

func (b *Bridge) write(ctx context.Context, ws *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, b.writeTimeout())
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, msg)
}

func (b *Bridge) writeTimeout() time.Duration {
	if b.cfg.WriteTimeout > 0 {
		return b.cfg.WriteTimeout
	}
	return 5 * time.Second
}

func (b *Bridge) serveProducer(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		b.logger.LogAttrs(r.Context(), slog.LevelWarn, "producer upgrade failed", logger.Error(err))
		return
	}
	defer func() { _ = ws.CloseNow() }()
	if b.cfg.ReadLimit > 0 {
		ws.SetReadLimit(b.cfg.ReadLimit)
	}

	ctx := r.Context()
	connID := uuid.NewString()
	log := b.logger.With(logger.Component("realtime"), logger.ConnID(connID))
	log.LogAttrs(ctx, slog.LevelInfo, "producer connected")

	if err := b.send(ctx, ws, EventWelcome, WelcomePayload{
		Message: "connected to notification relay",
		ConnID:  connID,
	}); err != nil {
		return
	}

	for {
		var f Frame
		if err := wsjson.Read(ctx, ws, &f); err != nil {
			log.LogAttrs(ctx, slog.LevelInfo, "producer disconnected", logger.Error(err))
			return
		}

		event, reply := b.handleProducerFrame(ctx, f)
		if err := b.send(ctx, ws, event, reply); err != nil {
			return
		}
	}
}

func (b *Bridge) handleProducerFrame(ctx context.Context, f Frame) (string, any) {
	if f.Event != EventNotification {
		return EventNotificationError, RelayError{Error: "unknown event: " + f.Event}
	}

	var req RelayRequest
	if err := json.Unmarshal(f.Data, &req); err != nil {
		return EventNotificationError, RelayError{Error: "invalid notification payload"}
	}
	if req.Room == "" {
		return EventNotificationError, RelayError{ID: req.ID, Error: ErrEmptyRoom.Error()}
	}

	delivered, err := b.PublishToRoom(ctx, req.Room, req.Data)
	if err != nil {
		return EventNotificationError, RelayError{ID: req.ID, Error: err.Error()}
	}
	return EventNotificationReceived, RelayAck{
		ID:            req.ID,
		Success:       true,
		RoomDelivered: req.Room,
		Delivered:     delivered,
	}
}

func (b *Bridge) send(ctx context.Context, ws *websocket.Conn, event string, data any) error {
	msg, err := encodeFrame(event, data)
	if err != nil {
		return err
	}
	return b.write(ctx, ws, msg)
}

func (b *Bridge) authorized(r *http.Request) bool {
	if b.cfg.ProducerToken == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(b.cfg.ProducerToken)) == 1
}
