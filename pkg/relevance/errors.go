package relevance

import "errors"

var (
	ErrNilScorer       = errors.New("relevance: scorer is nil")
	ErrScoreNaN        = errors.New("relevance: scorer returned NaN")
	ErrScorerTimeout   = errors.New("relevance: scorer timed out")
	ErrScorerFailed    = errors.New("relevance: scorer failed")
	ErrUnexpectedReply = errors.New("relevance: unexpected scorer response")
)
