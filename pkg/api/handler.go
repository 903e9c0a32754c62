package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
)

const maxEventBody = 1 << 20

// NotificationService is the read/update side of notifications.Manager.
type NotificationService interface {
	List(ctx context.Context, recipient string, opts notifications.ListOptions) (notifications.Page, error)
	Get(ctx context.Context, recipient, id string) (*notifications.Notification, error)
	MarkRead(ctx context.Context, recipient, id string) (*notifications.Notification, bool, error)
	MarkAllRead(ctx context.Context, recipient string) (int, error)
}

// Publisher emits envelopes onto the bus. publisher.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic event.Topic, env event.Envelope) bool
}

// Handler serves the notifications API.
type Handler struct {
	notifications NotificationService
	publisher     Publisher
	logger        *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler returns a Handler over svc and pub.
func NewHandler(svc NotificationService, pub Publisher, opts ...Option) (*Handler, error) {
	if svc == nil {
		return nil, ErrNilService
	}
	if pub == nil {
		return nil, ErrNilPublisher
	}
	h := &Handler{
		notifications: svc,
		publisher:     pub,
		logger:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("api"))
	return h, nil
}

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	opts, err := h.listOptions(ctx, uid, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	page, err := h.notifications.List(ctx, uid, opts)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if page.Items == nil {
		page.Items = []notifications.Notification{}
	}
	writeJSON(w, http.StatusOK, Response{
		Data: page,
		Meta: map[string]any{"limit": opts.Limit, "offset": opts.Offset},
	})
}

// MarkRead handles POST /api/notifications/{id}/read. Only an unread
// notification produces a notification.read event.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id := chi.URLParam(r, "id")

	n, changed, err := h.notifications.MarkRead(ctx, uid, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !changed {
		writeJSON(w, http.StatusOK, Response{Data: n})
		return
	}
	h.publish(ctx, event.Envelope{
		EventType:  event.NotificationRead,
		ActorID:    uid,
		TargetID:   n.ID,
		TargetType: event.TargetNotification,
		Payload:    map[string]any{"notificationType": string(n.Type)},
	})
	writeJSON(w, http.StatusOK, Response{Data: n})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	count, err := h.notifications.MarkAllRead(ctx, uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.publish(ctx, event.Envelope{
		EventType:  event.NotificationReadAll,
		ActorID:    uid,
		TargetID:   uid,
		TargetType: event.TargetUser,
		Payload:    map[string]any{"count": count},
	})
	writeJSON(w, http.StatusOK, Response{Data: map[string]any{"count": count}})
}

// PublishEvent handles POST /api/events. A valid envelope is always
// accepted; published reports whether the bus took it.
func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	var env event.Envelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err := dec.Decode(&env); err != nil {
		writeError(w, r, h.logger, errors.Join(ErrBadRequest, ErrInvalidBody))
		return
	}
	if err := env.Validate(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	published := h.publish(r.Context(), env)
	writeJSON(w, http.StatusAccepted, Response{Data: map[string]any{"published": published}})
}

func (h *Handler) publish(ctx context.Context, env event.Envelope) bool {
	ok := h.publisher.Publish(ctx, event.TopicFor(env.EventType), env)
	if !ok {
		h.logger.LogAttrs(ctx, slog.LevelWarn, "event not published",
			logger.EventType(string(env.EventType)),
			logger.TargetID(env.TargetID),
		)
	}
	return ok
}
