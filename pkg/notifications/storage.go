package notifications

import (
	"context"
	"time"
)

// Storage handles notification persistence and retrieval.
// All lookups are scoped to the recipient.
type Storage interface {
	// Create stores a new notification. It returns ErrDuplicate when a
	// notification with the same non-empty DedupKey already exists.
	Create(ctx context.Context, n Notification) error

	Get(ctx context.Context, recipient, id string) (*Notification, error)

	// List returns notifications newest first.
	List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, error)

	// Count returns the number of notifications matching opts, ignoring
	// Limit and Offset.
	Count(ctx context.Context, recipient string, opts ListOptions) (int, error)

	// MarkRead marks one notification read and returns it. changed is true
	// only for the call that moved it from unread to read.
	MarkRead(ctx context.Context, recipient, id string) (n *Notification, changed bool, err error)

	// MarkAllRead marks every unread notification read and returns how many
	// changed.
	MarkAllRead(ctx context.Context, recipient string) (int, error)

	CountUnread(ctx context.Context, recipient string) (int, error)
}

// ListOptions filters and paginates a listing.
type ListOptions struct {
	Limit  int        // 0 = no limit
	Offset int        // notifications to skip
	Read   *bool      // nil = both read and unread
	Types  []Type     // empty = any type
	Since  *time.Time // only notifications created at or after Since
}
