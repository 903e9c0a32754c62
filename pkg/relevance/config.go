package relevance

import "time"

type Config struct {
	Threshold   float64       `env:"RELEVANCE_THRESHOLD" envDefault:"50"`
	Timeout     time.Duration `env:"RELEVANCE_TIMEOUT" envDefault:"2s"`
	ScorerURL   string        `env:"RELEVANCE_SCORER_URL"`                    // remote scorer endpoint; empty uses StaticScore
	StaticScore float64       `env:"RELEVANCE_STATIC_SCORE" envDefault:"100"` // score returned when no remote scorer is configured
}

// NewScorer returns a RemoteScorer when cfg.ScorerURL is set and a
// StaticScorer otherwise.
func NewScorer(cfg Config, opts ...RemoteOption) Scorer {
	if cfg.ScorerURL != "" {
		return NewRemoteScorer(cfg.ScorerURL, opts...)
	}
	return StaticScorer(cfg.StaticScore)
}
