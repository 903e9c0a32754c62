// Package relevance decides whether a candidate notification is worth
// creating.
//
// A Scorer rates a candidate on a 0-100 scale. The Gate wraps a Scorer with
// an accept threshold and a per-call timeout: a candidate is accepted when
// its score is at or above the threshold. A scorer error, a timeout or a NaN
// score rejects the candidate; out-of-range scores are clamped.
//
//	gate := relevance.NewGate(relevance.NewRemoteScorer(cfg.ScorerURL),
//		relevance.WithThreshold(cfg.Threshold),
//		relevance.WithTimeout(cfg.Timeout),
//	)
//	d := gate.Evaluate(ctx, relevance.Candidate{
//		NotificationType: "new_post",
//		EventType:        "post.create",
//		RecipientID:      followerID,
//		ActorID:          authorID,
//	})
//	if d.Accepted { ... }
package relevance
