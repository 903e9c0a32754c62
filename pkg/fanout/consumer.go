package fanout

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

// Consumer reads every partition of a bus.Reader and feeds the envelopes to
// a Handler. Messages are acknowledged once handled, whatever the outcome.
type Consumer struct {
	reader  bus.Reader
	handler Handler
	logger  *slog.Logger

	processTimeout  time.Duration
	readBackoff     time.Duration
	shutdownTimeout time.Duration

	states map[string]*statemachine.Machine[PartitionState]

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(reader bus.Reader, handler Handler, opts ...Option) (*Consumer, error) {
	if reader == nil {
		return nil, ErrNilReader
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	c := &Consumer{
		reader:          reader,
		handler:         handler,
		logger:          slog.Default(),
		processTimeout:  30 * time.Second,
		readBackoff:     time.Second,
		shutdownTimeout: 30 * time.Second,
		states:          make(map[string]*statemachine.Machine[PartitionState]),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, p := range reader.Partitions() {
		c.states[p.Stream] = statemachine.New(StateIdle, partitionTransitions)
	}
	return c, nil
}

// States returns the current state of every partition keyed by stream name.
func (c *Consumer) States() map[string]PartitionState {
	out := make(map[string]PartitionState, len(c.states))
	for stream, m := range c.states {
		out[stream] = m.Current()
	}
	return out
}

// Start launches one read loop per partition.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, c.cancel = context.WithCancel(ctx)
	parts := c.reader.Partitions()
	for _, p := range parts {
		c.wg.Add(1)
		go c.loop(ctx, p)
	}

	c.logger.LogAttrs(ctx, slog.LevelInfo, "fanout consumer started",
		logger.Component("fanout"),
		slog.Int("partitions", len(parts)),
	)
	return nil
}

// Stop stops reading and waits for in-flight messages to finish.
func (c *Consumer) Stop() error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return ErrNotStarted
	}
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.LogAttrs(context.Background(), slog.LevelInfo, "fanout consumer stopped",
			logger.Component("fanout"))
		return nil
	case <-time.After(c.shutdownTimeout):
		return ErrShutdownTimeout
	}
}

// Run starts the consumer and returns a function suitable for errgroup.
func (c *Consumer) Run(ctx context.Context) func() error {
	return func() error {
		if err := c.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return c.Stop()
	}
}

func (c *Consumer) loop(ctx context.Context, p bus.Partition) {
	defer c.wg.Done()

	state := c.states[p.Stream]
	if state == nil {
		state = statemachine.New(StateIdle, partitionTransitions)
	}

	for ctx.Err() == nil {
		_ = state.Transition(StateReceiving)
		msgs, err := c.reader.Read(ctx, p)
		if err != nil || len(msgs) == 0 {
			_ = state.Transition(StateIdle)
			if err != nil && ctx.Err() == nil {
				c.logger.LogAttrs(ctx, slog.LevelError, "failed to read partition",
					logger.Stream(p.Stream),
					logger.Error(err),
				)
				select {
				case <-ctx.Done():
				case <-time.After(c.readBackoff):
				}
			}
			continue
		}

		_ = state.Transition(StateProcessing)
		for _, msg := range msgs {
			// Unprocessed messages stay pending; the next reader claims them
			// once they have been idle for the bus ClaimMinIdle.
			if ctx.Err() != nil {
				break
			}
			c.process(ctx, msg)
		}
		_ = state.Transition(StateIdle)
	}
}

// process handles one message on a context detached from the read loop so a
// shutdown does not cut it short.
func (c *Consumer) process(parent context.Context, msg bus.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.processTimeout)
	defer cancel()

	attrs := []slog.Attr{
		logger.Stream(msg.Partition.Stream),
		logger.MessageID(msg.ID),
		logger.EventType(msg.Type),
	}

	start := time.Now()
	env, err := event.Decode(msg.Value)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "dropping undecodable message",
			append(attrs, logger.Error(err))...)
		c.ack(ctx, msg)
		return
	}

	res, err := c.handler.Handle(ctx, env)
	switch {
	case errors.Is(err, ErrUnknownEventType):
		c.logger.LogAttrs(ctx, slog.LevelWarn, "dropping event of unknown type",
			append(attrs, logger.Error(err))...)
	case err != nil:
		c.logger.LogAttrs(ctx, slog.LevelWarn, "dropping invalid event",
			append(attrs, logger.TargetID(env.TargetID), logger.Error(err))...)
	default:
		c.logger.LogAttrs(ctx, slog.LevelDebug, "event processed",
			append(attrs,
				logger.ActorID(env.ActorID),
				logger.TargetID(env.TargetID),
				slog.Int("created", res.Created),
				slog.Int("duplicates", res.Duplicates),
				slog.Int("rejected", res.Rejected),
				slog.Int("failed", res.Failed),
				logger.Duration(time.Since(start)),
			)...)
	}

	c.ack(ctx, msg)
}

func (c *Consumer) ack(ctx context.Context, msg bus.Message) {
	if err := c.reader.Ack(ctx, msg); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "failed to acknowledge message",
			logger.Stream(msg.Partition.Stream),
			logger.MessageID(msg.ID),
			logger.Error(err),
		)
	}
}
