package redis

import "time"

type Config struct {
	ConnectionURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts    int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts is the number of pings attempted before giving up.
	RetryInterval    time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"500ms"`         // RetryInterval is the wait after the first failed attempt.
	MaxRetryInterval time.Duration `env:"REDIS_MAX_RETRY_INTERVAL" envDefault:"5s"`        // MaxRetryInterval caps the exponential backoff.
	ConnectTimeout   time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`          // ConnectTimeout bounds the whole Connect call.
}
