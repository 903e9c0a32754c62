package publisher

import "time"

type Config struct {
	DialTimeout time.Duration `env:"PUBLISHER_DIAL_TIMEOUT" envDefault:"10s"`
}
