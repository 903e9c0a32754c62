package notifications

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	byUser map[string][]*Notification
	dedup  map[string]struct{}
	now    func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byUser: make(map[string][]*Notification),
		dedup:  make(map[string]struct{}),
		now:    time.Now,
	}
}

func (s *MemoryStorage) Create(_ context.Context, n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.Recipient == "" {
		return ErrMissingRecipient
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n.DedupKey != "" {
		if _, ok := s.dedup[n.DedupKey]; ok {
			return ErrDuplicate
		}
		s.dedup[n.DedupKey] = struct{}{}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	n.Metadata = cloneMap(n.Metadata)
	s.byUser[n.Recipient] = append(s.byUser[n.Recipient], &n)
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, recipient, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n := s.find(recipient, id); n != nil {
		out := *n
		return &out, nil
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(_ context.Context, recipient string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := s.filter(recipient, opts)
	slices.SortStableFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	start := min(max(opts.Offset, 0), len(filtered))
	end := len(filtered)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, end)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) Count(_ context.Context, recipient string, opts ListOptions) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(recipient, opts)), nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, recipient, id string) (*Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.find(recipient, id)
	if n == nil {
		return nil, false, ErrNotificationNotFound
	}
	changed := !n.IsRead
	n.MarkAsRead(s.now())
	out := *n
	return &out, changed, nil
}

func (s *MemoryStorage) MarkAllRead(_ context.Context, recipient string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := 0
	for _, n := range s.byUser[recipient] {
		if !n.IsRead {
			n.MarkAsRead(now)
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, recipient string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.byUser[recipient] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) find(recipient, id string) *Notification {
	for _, n := range s.byUser[recipient] {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (s *MemoryStorage) filter(recipient string, opts ListOptions) []Notification {
	out := make([]Notification, 0, len(s.byUser[recipient]))
	for _, n := range s.byUser[recipient] {
		if opts.Read != nil && n.IsRead != *opts.Read {
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n.Type) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		out = append(out, *n)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
