package publisher

import (
	"log/slog"
	"time"
)

type Option func(*Publisher)

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDialTimeout bounds a single connection attempt. The attempt is not
// bound to any caller's context, so one impatient caller cannot abort the
// dial others are waiting on.
func WithDialTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.dialTimeout = d
		}
	}
}

// WithConfig applies cfg.
func WithConfig(cfg Config) Option {
	return WithDialTimeout(cfg.DialTimeout)
}
