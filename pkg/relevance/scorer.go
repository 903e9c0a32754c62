package relevance

import "context"

const (
	MinScore = 0.0
	MaxScore = 100.0

	// DefaultThreshold is the midpoint of the score scale.
	DefaultThreshold = (MinScore + MaxScore) / 2
)

// Candidate is a notification that may be created.
type Candidate struct {
	NotificationType string
	EventType        string
	RecipientID      string
	ActorID          string
}

// Scorer rates a candidate on the MinScore..MaxScore scale.
type Scorer interface {
	Score(ctx context.Context, c Candidate) (float64, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, c Candidate) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, c Candidate) (float64, error) {
	return f(ctx, c)
}

// StaticScorer returns the same score for every candidate.
type StaticScorer float64

func (s StaticScorer) Score(context.Context, Candidate) (float64, error) {
	return float64(s), nil
}

// Clamp limits score to the MinScore..MaxScore scale.
func Clamp(score float64) float64 {
	return min(max(score, MinScore), MaxScore)
}
