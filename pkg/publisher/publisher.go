package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pulse/pkg/bus"
	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/statemachine"
)

type Publisher struct {
	dialer      bus.Dialer
	logger      *slog.Logger
	dialTimeout time.Duration
	state       *statemachine.Machine[State]

	mu       sync.Mutex
	producer bus.Producer
	pending  *attempt
	closed   bool
}

// attempt is a connection attempt shared by every caller that arrives while
// it is in flight.
type attempt struct {
	done     chan struct{}
	producer bus.Producer
	err      error
}

func New(dialer bus.Dialer, opts ...Option) (*Publisher, error) {
	if dialer == nil {
		return nil, ErrNilDialer
	}
	p := &Publisher{
		dialer:      dialer,
		logger:      slog.Default(),
		dialTimeout: 10 * time.Second,
		state:       statemachine.New(StateDisconnected, transitions),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// State returns the current connection state.
func (p *Publisher) State() State {
	return p.state.Current()
}

// Connect establishes the bus connection if needed. It is safe to call
// concurrently and never dials more than once at a time.
func (p *Publisher) Connect(ctx context.Context) error {
	_, err := p.connect(ctx)
	return err
}

// Publish sends env to topic keyed by its target id. It returns false on any
// failure, including a missing target id, which is rejected before the bus
// is contacted.
func (p *Publisher) Publish(ctx context.Context, topic event.Topic, env event.Envelope) bool {
	attrs := []slog.Attr{
		logger.Topic(string(topic)),
		logger.EventType(string(env.EventType)),
		logger.ActorID(env.ActorID),
		logger.TargetID(env.TargetID),
	}

	if env.Key() == "" {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "publish rejected: missing target id",
			append(attrs, logger.Error(event.ErrMissingTargetID))...)
		return false
	}
	if topic == "" {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "publish rejected: empty topic", attrs...)
		return false
	}

	data, err := env.Encode()
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "publish failed: encode envelope",
			append(attrs, logger.Error(err))...)
		return false
	}

	prod, err := p.connect(ctx)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "publish failed: bus unavailable",
			append(attrs, logger.Error(err))...)
		return false
	}

	rec := bus.Record{Key: env.Key(), Type: string(env.EventType), Value: data}
	if err := prod.Send(ctx, string(topic), rec); err != nil {
		if ctx.Err() == nil {
			p.forget(prod, err)
		}
		p.logger.LogAttrs(ctx, slog.LevelError, "publish failed: send",
			append(attrs, logger.Error(err))...)
		return false
	}

	p.logger.LogAttrs(ctx, slog.LevelDebug, "event published", attrs...)
	return true
}

// Healthcheck reports whether the bus is reachable, connecting if needed.
func (p *Publisher) Healthcheck(ctx context.Context) error {
	if p.State() == StateConnected {
		return nil
	}
	if err := p.Connect(ctx); err != nil {
		return errors.Join(ErrNotConnected, err)
	}
	return nil
}

// Close drops the connection. Later calls to Publish fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	prod := p.producer
	p.producer = nil
	if prod == nil {
		return nil
	}
	_ = p.state.Transition(StateDisconnected)
	return prod.Close()
}

func (p *Publisher) connect(ctx context.Context) (bus.Producer, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.producer != nil {
		prod := p.producer
		p.mu.Unlock()
		return prod, nil
	}
	a := p.pending
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		p.pending = a
		_ = p.state.Transition(StateConnecting)
		go p.dial(ctx, a)
	}
	p.mu.Unlock()

	select {
	case <-a.done:
		return a.producer, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Publisher) dial(ctx context.Context, a *attempt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.dialTimeout)
	defer cancel()

	start := time.Now()
	prod, err := p.dialer.Dial(ctx)

	p.mu.Lock()
	p.pending = nil
	if err == nil && p.closed {
		_ = prod.Close()
		err = ErrClosed
	}
	if err != nil {
		_ = p.state.Transition(StateDisconnected)
		a.err = errors.Join(ErrConnectFailed, err)
	} else {
		p.producer = prod
		_ = p.state.Transition(StateConnected)
		a.producer = prod
		go p.supervise(prod)
	}
	p.mu.Unlock()
	close(a.done)

	if a.err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "bus connection failed",
			logger.Component("publisher"),
			logger.Duration(time.Since(start)),
			logger.Error(a.err),
		)
		return
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "bus connected",
		logger.Component("publisher"),
		logger.Duration(time.Since(start)),
	)
}

// supervise marks the publisher disconnected as soon as prod reports loss.
func (p *Publisher) supervise(prod bus.Producer) {
	<-prod.Done()
	p.forget(prod, nil)
}

// forget drops prod if it is still the current connection.
func (p *Publisher) forget(prod bus.Producer, cause error) {
	p.mu.Lock()
	if p.producer != prod {
		p.mu.Unlock()
		return
	}
	p.producer = nil
	_ = p.state.Transition(StateDisconnected)
	p.mu.Unlock()

	_ = prod.Close()
	p.logger.LogAttrs(context.Background(), slog.LevelWarn, "bus connection lost",
		logger.Component("publisher"),
		logger.Error(cause),
	)
}
