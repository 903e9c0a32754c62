package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/pulse/pkg/notifications"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.URL.Query().Get("userId"))
	if id == "" {
		return "", errors.Join(ErrBadRequest, ErrMissingUserID)
	}
	return id, nil
}

// listOptions parses paging and filters. type may repeat or be
// comma-separated. since is either an RFC 3339 timestamp or the id of a
// notification; with an id only newer notifications are returned, and an
// unknown id is ignored.
func (h *Handler) listOptions(ctx context.Context, recipient string, r *http.Request) (notifications.ListOptions, error) {
	q := r.URL.Query()
	opts := notifications.ListOptions{Limit: defaultLimit}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return opts, errors.Join(ErrBadRequest, ErrInvalidLimit)
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.Join(ErrBadRequest, ErrInvalidOffset)
		}
		opts.Offset = n
	}
	if v := q.Get("read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Join(ErrBadRequest, ErrInvalidRead)
		}
		opts.Read = &read
	}
	for _, raw := range q["type"] {
		for _, part := range strings.Split(raw, ",") {
			t := notifications.Type(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			if !t.Valid() {
				return opts, errors.Join(ErrBadRequest, ErrInvalidType)
			}
			opts.Types = append(opts.Types, t)
		}
	}
	if v := strings.TrimSpace(q.Get("since")); v != "" {
		since, err := h.since(ctx, recipient, v)
		if err != nil {
			return opts, err
		}
		opts.Since = since
	}
	return opts, nil
}

func (h *Handler) since(ctx context.Context, recipient, v string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return &t, nil
	}
	n, err := h.notifications.Get(ctx, recipient, v)
	switch {
	case errors.Is(err, notifications.ErrNotificationNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	// Stored timestamps have millisecond precision.
	t := n.CreatedAt.Add(time.Millisecond)
	return &t, nil
}
