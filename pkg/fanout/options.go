package fanout

import (
	"log/slog"
	"time"
)

type Option func(*Consumer)

func WithLogger(l *slog.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConfig applies the timing settings of cfg. Persist settings belong to
// the Processor, see WithPersistRetry.
func WithConfig(cfg Config) Option {
	return func(c *Consumer) {
		if cfg.ProcessTimeout > 0 {
			c.processTimeout = cfg.ProcessTimeout
		}
		if cfg.ReadErrorBackoff > 0 {
			c.readBackoff = cfg.ReadErrorBackoff
		}
		if cfg.ShutdownTimeout > 0 {
			c.shutdownTimeout = cfg.ShutdownTimeout
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.processTimeout = d
		}
	}
}
