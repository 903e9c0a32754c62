package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// RemoteScorer asks an HTTP scoring service for a score.
//
// Request:  POST {"notificationType", "eventType", "userId", "contentCreatorId"}
// Response: 200 {"score": <number>}
type RemoteScorer struct {
	url    string
	client *http.Client
}

type RemoteOption func(*RemoteScorer)

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *RemoteScorer) {
		if c != nil {
			r.client = c
		}
	}
}

func NewRemoteScorer(url string, opts ...RemoteOption) *RemoteScorer {
	r := &RemoteScorer{
		url:    url,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scoreRequest struct {
	NotificationType string `json:"notificationType"`
	EventType        string `json:"eventType"`
	UserID           string `json:"userId"`
	ContentCreatorID string `json:"contentCreatorId"`
}

type scoreResponse struct {
	Score *float64 `json:"score"`
}

func (r *RemoteScorer) Score(ctx context.Context, c Candidate) (float64, error) {
	body, err := json.Marshal(scoreRequest{
		NotificationType: c.NotificationType,
		EventType:        c.EventType,
		UserID:           c.RecipientID,
		ContentCreatorID: c.ActorID,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%w: status %d", ErrUnexpectedReply, resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return 0, errors.Join(ErrUnexpectedReply, err)
	}
	if out.Score == nil {
		return 0, fmt.Errorf("%w: missing score", ErrUnexpectedReply)
	}
	return *out.Score, nil
}
