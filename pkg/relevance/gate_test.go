package relevance_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/relevance"
)

func newGate(t *testing.T, s relevance.Scorer, opts ...relevance.GateOption) *relevance.Gate {
	t.Helper()
	g, err := relevance.NewGate(s, append([]relevance.GateOption{relevance.WithLogger(logger.Discard())}, opts...)...)
	require.NoError(t, err)
	return g
}

var candidate = relevance.Candidate{
	NotificationType: "new_post",
	EventType:        "post.create",
	RecipientID:      "follower",
	ActorID:          "author",
}

func TestNewGate_NilScorer(t *testing.T) {
	t.Parallel()

	_, err := relevance.NewGate(nil)
	assert.ErrorIs(t, err, relevance.ErrNilScorer)
}

func TestGate_Threshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		score    float64
		accepted bool
		want     float64
	}{
		{name: "above", score: 80, accepted: true, want: 80},
		{name: "equal", score: 50, accepted: true, want: 50},
		{name: "below", score: 49.9, accepted: false, want: 49.9},
		{name: "clamped high", score: 250, accepted: true, want: 100},
		{name: "clamped low", score: -3, accepted: false, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newGate(t, relevance.StaticScorer(tt.score))
			d := g.Evaluate(context.Background(), candidate)
			assert.Equal(t, tt.accepted, d.Accepted)
			assert.InDelta(t, tt.want, d.Score, 1e-9)
			assert.NoError(t, d.Err)
		})
	}
}

func TestGate_DefaultThresholdIsMidpoint(t *testing.T) {
	t.Parallel()

	g := newGate(t, relevance.StaticScorer(0))
	assert.InDelta(t, 50.0, g.Threshold(), 1e-9)

	g = newGate(t, relevance.StaticScorer(0), relevance.WithThreshold(500))
	assert.InDelta(t, relevance.MaxScore, g.Threshold(), 1e-9)
}

func TestGate_ScorerErrorRejects(t *testing.T) {
	t.Parallel()

	g := newGate(t, relevance.ScorerFunc(func(context.Context, relevance.Candidate) (float64, error) {
		return 99, errors.New("model offline")
	}))
	d := g.Evaluate(context.Background(), candidate)
	assert.False(t, d.Accepted)
	assert.ErrorIs(t, d.Err, relevance.ErrScorerFailed)
}

func TestGate_NaNRejects(t *testing.T) {
	t.Parallel()

	g := newGate(t, relevance.StaticScorer(math.NaN()))
	d := g.Evaluate(context.Background(), candidate)
	assert.False(t, d.Accepted)
	assert.ErrorIs(t, d.Err, relevance.ErrScoreNaN)
}

func TestGate_TimeoutRejects(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	// The scorer ignores its context on purpose.
	g := newGate(t, relevance.ScorerFunc(func(context.Context, relevance.Candidate) (float64, error) {
		<-release
		return 100, nil
	}), relevance.WithTimeout(20*time.Millisecond))

	start := time.Now()
	d := g.Evaluate(context.Background(), candidate)
	assert.False(t, d.Accepted)
	assert.ErrorIs(t, d.Err, relevance.ErrScorerTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGate_PassesCandidate(t *testing.T) {
	t.Parallel()

	var got relevance.Candidate
	g := newGate(t, relevance.ScorerFunc(func(_ context.Context, c relevance.Candidate) (float64, error) {
		got = c
		return 75, nil
	}))
	d := g.Evaluate(context.Background(), candidate)
	assert.True(t, d.Accepted)
	assert.Equal(t, candidate, got)
}
