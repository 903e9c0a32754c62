package bus

import "time"

type Config struct {
	StreamPrefix   string        `env:"BUS_STREAM_PREFIX" envDefault:"pulse:"`
	Partitions     int           `env:"BUS_PARTITIONS" envDefault:"4"`
	Group          string        `env:"BUS_CONSUMER_GROUP" envDefault:"notification-service"`
	ConsumerName   string        `env:"BUS_CONSUMER_NAME"`                    // generated when empty
	BlockTimeout   time.Duration `env:"BUS_BLOCK_TIMEOUT" envDefault:"2s"`    // how long a read waits for new records
	BatchSize      int64         `env:"BUS_BATCH_SIZE" envDefault:"16"`       // max records per read
	MaxLen         int64         `env:"BUS_STREAM_MAXLEN" envDefault:"100000"` // approximate cap per partition stream
	HealthInterval time.Duration `env:"BUS_HEALTH_INTERVAL" envDefault:"5s"`  // producer connection probe period
	ClaimMinIdle   time.Duration `env:"BUS_CLAIM_MIN_IDLE" envDefault:"30s"`  // pending entries idle this long are taken over from other consumers; 0 takes all
}

// DefaultConfig returns the configuration used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		StreamPrefix:   "pulse:",
		Partitions:     4,
		Group:          "notification-service",
		BlockTimeout:   2 * time.Second,
		BatchSize:      16,
		MaxLen:         100000,
		HealthInterval: 5 * time.Second,
		ClaimMinIdle:   30 * time.Second,
	}
}

func (c Config) partitions() int {
	return max(c.Partitions, 1)
}
