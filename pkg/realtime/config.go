package realtime

import "time"

type Config struct {
	ClientAddr   string `env:"REALTIME_CLIENT_ADDR" envDefault:":8081"`
	InternalAddr string `env:"REALTIME_INTERNAL_ADDR" envDefault:":8082"`

	// ProducerToken is the bearer token required on the internal port.
	// Empty disables the check.
	ProducerToken string `env:"REALTIME_PRODUCER_TOKEN"`

	// AllowedOrigins are origin patterns accepted on the client port.
	AllowedOrigins []string `env:"REALTIME_ALLOWED_ORIGINS" envSeparator:","`

	// SendBuffer is the number of frames queued per client before the client
	// is dropped.
	SendBuffer   int           `env:"REALTIME_SEND_BUFFER" envDefault:"64"`
	WriteTimeout time.Duration `env:"REALTIME_WRITE_TIMEOUT" envDefault:"5s"`
	PingInterval time.Duration `env:"REALTIME_PING_INTERVAL" envDefault:"30s"`
	ReadLimit    int64         `env:"REALTIME_READ_LIMIT" envDefault:"65536"`

	// InternalURL is where producer clients dial the internal port.
	InternalURL string        `env:"REALTIME_INTERNAL_URL" envDefault:"ws://localhost:8082/"`
	AckTimeout  time.Duration `env:"REALTIME_ACK_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns the configuration used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		ClientAddr:   ":8081",
		InternalAddr: ":8082",
		SendBuffer:   64,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		ReadLimit:    65536,
		InternalURL:  "ws://localhost:8082/",
		AckTimeout:   5 * time.Second,
	}
}
