package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pulse/pkg/logger"
)

// Manager orchestrates notification storage and delivery.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a new notification manager. A nil deliverer disables
// real-time delivery.
func NewManager(storage Storage, deliverer Deliverer, opts ...ManagerOption) *Manager {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}

	m := &Manager{
		storage:   storage,
		deliverer: deliverer,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send stores n and then pushes it to the recipient. A storage error,
// including ErrDuplicate, is returned and nothing is pushed. A delivery
// error is logged and does not fail the call.
func (m *Manager) Send(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now().UTC()
	}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}

	if err := m.storage.Create(ctx, n); err != nil {
		return Notification{}, fmt.Errorf("failed to store notification for %s: %w", n.Recipient, err)
	}

	if err := m.deliverer.Deliver(ctx, n); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification, but it was stored successfully",
			logger.NotificationID(n.ID),
			logger.UserID(n.Recipient),
			logger.Error(err),
		)
	}

	return n, nil
}

// Page is one page of a recipient's notifications.
type Page struct {
	Items       []Notification `json:"notifications"`
	Total       int            `json:"total"`
	UnreadCount int            `json:"unreadCount"`
}

// List returns a page of notifications along with the filtered total and
// the recipient's overall unread count.
func (m *Manager) List(ctx context.Context, recipient string, opts ListOptions) (Page, error) {
	items, err := m.storage.List(ctx, recipient, opts)
	if err != nil {
		return Page{}, err
	}
	total, err := m.storage.Count(ctx, recipient, opts)
	if err != nil {
		return Page{}, err
	}
	unread, err := m.storage.CountUnread(ctx, recipient)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, UnreadCount: unread}, nil
}

func (m *Manager) Get(ctx context.Context, recipient, id string) (*Notification, error) {
	return m.storage.Get(ctx, recipient, id)
}

// MarkRead marks a notification read. changed reports whether this call
// did the transition.
func (m *Manager) MarkRead(ctx context.Context, recipient, id string) (*Notification, bool, error) {
	return m.storage.MarkRead(ctx, recipient, id)
}

// MarkAllRead marks all notifications as read for a recipient and returns
// how many changed.
func (m *Manager) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	return m.storage.MarkAllRead(ctx, recipient)
}

func (m *Manager) CountUnread(ctx context.Context, recipient string) (int, error) {
	return m.storage.CountUnread(ctx, recipient)
}
