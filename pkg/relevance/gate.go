package relevance

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/dmitrymomot/pulse/pkg/logger"
)

// Decision is the outcome of a gate evaluation. Err is set when the
// candidate was rejected because scoring failed.
type Decision struct {
	Accepted bool
	Score    float64
	Err      error
}

// Gate applies an accept threshold to a Scorer.
type Gate struct {
	scorer    Scorer
	threshold float64
	timeout   time.Duration
	logger    *slog.Logger
}

type GateOption func(*Gate)

// WithThreshold sets the minimum accepted score. Values outside the scale
// are clamped.
func WithThreshold(t float64) GateOption {
	return func(g *Gate) {
		if !math.IsNaN(t) {
			g.threshold = Clamp(t)
		}
	}
}

// WithTimeout bounds each Score call. Non-positive values are ignored.
func WithTimeout(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithConfig applies threshold and timeout from cfg.
func WithConfig(cfg Config) GateOption {
	return func(g *Gate) {
		WithThreshold(cfg.Threshold)(g)
		WithTimeout(cfg.Timeout)(g)
	}
}

func NewGate(scorer Scorer, opts ...GateOption) (*Gate, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	g := &Gate{
		scorer:    scorer,
		threshold: DefaultThreshold,
		timeout:   2 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Evaluate scores c and applies the threshold.
func (g *Gate) Evaluate(ctx context.Context, c Candidate) Decision {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	score, err := g.score(ctx, c)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "relevance scoring failed, rejecting candidate",
			logger.Component("relevance"),
			logger.UserID(c.RecipientID),
			logger.ActorID(c.ActorID),
			logger.EventType(c.EventType),
			logger.Error(err),
		)
		return Decision{Err: err}
	}

	score = Clamp(score)
	return Decision{
		Accepted: score >= g.threshold,
		Score:    score,
	}
}

// score runs the scorer so that a scorer ignoring ctx still cannot hold the
// caller past the timeout.
func (g *Gate) score(ctx context.Context, c Candidate) (float64, error) {
	type result struct {
		score float64
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := g.scorer.Score(ctx, c)
		ch <- result{s, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, ErrScorerTimeout
		}
		return 0, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) {
				return 0, errors.Join(ErrScorerTimeout, r.err)
			}
			return 0, errors.Join(ErrScorerFailed, r.err)
		}
		if math.IsNaN(r.score) {
			return 0, ErrScoreNaN
		}
		return r.score, nil
	}
}
