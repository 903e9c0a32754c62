package fanout

import "time"

type Config struct {
	ProcessTimeout   time.Duration `env:"FANOUT_PROCESS_TIMEOUT" envDefault:"30s"`   // budget for one message, all recipients included
	PersistAttempts  int           `env:"FANOUT_PERSIST_ATTEMPTS" envDefault:"3"`    // attempts per recipient
	PersistBackoff   time.Duration `env:"FANOUT_PERSIST_BACKOFF" envDefault:"200ms"` // wait before the second attempt, doubled after
	ReadErrorBackoff time.Duration `env:"FANOUT_READ_ERROR_BACKOFF" envDefault:"1s"` // pause after a failed bus read
	ShutdownTimeout  time.Duration `env:"FANOUT_SHUTDOWN_TIMEOUT" envDefault:"30s"`  // how long Stop waits for in-flight messages
}

// DefaultConfig returns the configuration used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		ProcessTimeout:   30 * time.Second,
		PersistAttempts:  3,
		PersistBackoff:   200 * time.Millisecond,
		ReadErrorBackoff: time.Second,
		ShutdownTimeout:  30 * time.Second,
	}
}
