package fanout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/notifications"
	"github.com/dmitrymomot/pulse/pkg/relevance"
)

// Sender persists a notification and pushes it to the recipient.
// *notifications.Manager implements it.
type Sender interface {
	Send(ctx context.Context, n notifications.Notification) (notifications.Notification, error)
}

// Gate decides whether a candidate is relevant enough. *relevance.Gate
// implements it.
type Gate interface {
	Evaluate(ctx context.Context, c relevance.Candidate) relevance.Decision
}

// Handler processes one decoded envelope.
type Handler interface {
	Handle(ctx context.Context, env event.Envelope) (Result, error)
}

// Result counts what happened to the candidates of one envelope.
type Result struct {
	Created    int
	Duplicates int
	Rejected   int
	Failed     int
}

// Processor is the Handler that creates notifications.
type Processor struct {
	sender   Sender
	gate     Gate
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

type ProcessorOption func(*Processor)

func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPersistRetry sets how many times a recipient's notification is
// written before giving up, and the initial wait between attempts.
func WithPersistRetry(attempts int, backoff time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.attempts = max(attempts, 1)
		p.backoff = max(backoff, 0)
	}
}

func NewProcessor(sender Sender, gate Gate, opts ...ProcessorOption) (*Processor, error) {
	if sender == nil {
		return nil, ErrNilSender
	}
	if gate == nil {
		return nil, ErrNilGate
	}
	p := &Processor{
		sender:   sender,
		gate:     gate,
		logger:   slog.Default(),
		attempts: 3,
		backoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Handle expands env into notifications. The returned error reports an
// envelope that cannot be processed at all; per-recipient failures are
// counted in Result and logged.
func (p *Processor) Handle(ctx context.Context, env event.Envelope) (Result, error) {
	var res Result

	if err := env.Validate(); err != nil {
		if errors.Is(err, event.ErrUnknownEventType) {
			return res, errors.Join(ErrUnknownEventType, err)
		}
		return res, errors.Join(ErrInvalidEnvelope, err)
	}
	if _, ok := silentTypes[env.EventType]; ok {
		return res, nil
	}

	candidates, err := plan(env)
	if err != nil {
		return res, errors.Join(ErrInvalidEnvelope, err)
	}

	for _, c := range candidates {
		n := c.n
		if c.gated {
			d := p.gate.Evaluate(ctx, relevance.Candidate{
				NotificationType: string(n.Type),
				EventType:        string(env.EventType),
				RecipientID:      n.Recipient,
				ActorID:          env.ActorID,
			})
			if !d.Accepted {
				res.Rejected++
				continue
			}
			n.RelevanceScore = d.Score
		} else {
			n.RelevanceScore = relevance.MaxScore
		}

		switch err := p.persist(ctx, n); {
		case err == nil:
			res.Created++
		case errors.Is(err, notifications.ErrDuplicate):
			res.Duplicates++
			p.logger.LogAttrs(ctx, slog.LevelDebug, "notification already exists, skipping",
				logger.EventType(string(env.EventType)),
				logger.UserID(n.Recipient),
			)
		default:
			res.Failed++
			p.logger.LogAttrs(ctx, slog.LevelError, "failed to create notification",
				logger.EventType(string(env.EventType)),
				logger.ActorID(env.ActorID),
				logger.TargetID(env.TargetID),
				logger.UserID(n.Recipient),
				logger.Error(err),
			)
		}
	}

	return res, nil
}

func (p *Processor) persist(ctx context.Context, n notifications.Notification) error {
	wait := p.backoff
	var err error
	for attempt := range p.attempts {
		if _, err = p.sender.Send(ctx, n); err == nil || permanent(err) {
			return err
		}
		if attempt == p.attempts-1 {
			break
		}

		p.logger.LogAttrs(ctx, slog.LevelWarn, "retrying notification write",
			logger.UserID(n.Recipient),
			logger.RetryCount(attempt+1),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func permanent(err error) bool {
	for _, target := range []error{
		notifications.ErrDuplicate,
		notifications.ErrMissingRecipient,
		notifications.ErrMissingMessage,
		notifications.ErrInvalidType,
		notifications.ErrInvalidRefModel,
		notifications.ErrScoreOutOfRange,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
