package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/pulse/pkg/logger"
	pulseredis "github.com/dmitrymomot/pulse/pkg/redis"
)

// RedisDialer opens StreamProducers, connecting with pkg/redis retry settings.
type RedisDialer struct {
	redisCfg pulseredis.Config
	cfg      Config
	logger   *slog.Logger
}

// DialerOption configures a RedisDialer.
type DialerOption func(*RedisDialer)

// WithDialerLogger sets the logger handed to dialed producers.
func WithDialerLogger(l *slog.Logger) DialerOption {
	return func(d *RedisDialer) {
		if l != nil {
			d.logger = l
		}
	}
}

func NewRedisDialer(redisCfg pulseredis.Config, cfg Config, opts ...DialerOption) *RedisDialer {
	d := &RedisDialer{
		redisCfg: redisCfg,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects to Redis and returns a producer owning the client.
func (d *RedisDialer) Dial(ctx context.Context) (Producer, error) {
	client, err := pulseredis.Connect(ctx, d.redisCfg)
	if err != nil {
		return nil, err
	}
	return NewStreamProducer(client, d.cfg, d.logger), nil
}

// StreamProducer appends records to partition streams with XADD.
// It owns the client and closes it on Close or connection loss.
type StreamProducer struct {
	client redis.UniversalClient
	cfg    Config
	logger *slog.Logger

	done     chan struct{}
	lostOnce sync.Once
	stop     chan struct{}
}

func NewStreamProducer(client redis.UniversalClient, cfg Config, l *slog.Logger) *StreamProducer {
	if l == nil {
		l = slog.Default()
	}
	p := &StreamProducer{
		client: client,
		cfg:    cfg,
		logger: l,
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	if cfg.HealthInterval > 0 {
		go p.watch(cfg.HealthInterval)
	}
	return p
}

func (p *StreamProducer) Send(ctx context.Context, topic string, rec Record) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if rec.Key == "" {
		return ErrEmptyKey
	}
	select {
	case <-p.done:
		return ErrProducerClosed
	default:
	}

	args := &redis.XAddArgs{
		Stream: StreamName(p.cfg.StreamPrefix, topic, PartitionFor(rec.Key, p.cfg.partitions())),
		Values: map[string]any{
			"key":   rec.Key,
			"type":  rec.Type,
			"value": string(rec.Value),
		},
	}
	if p.cfg.MaxLen > 0 {
		args.MaxLen = p.cfg.MaxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		// A server reply means the connection is fine; anything else is treated as loss.
		var replyErr redis.Error
		if !errors.As(err, &replyErr) && ctx.Err() == nil {
			p.lost(err)
		}
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func (p *StreamProducer) Done() <-chan struct{} {
	return p.done
}

func (p *StreamProducer) Close() error {
	var err error
	p.lostOnce.Do(func() {
		close(p.stop)
		close(p.done)
		err = p.client.Close()
	})
	return err
}

func (p *StreamProducer) lost(cause error) {
	p.lostOnce.Do(func() {
		p.logger.LogAttrs(context.Background(), slog.LevelWarn, "bus producer connection lost",
			logger.Component("bus"),
			logger.Error(cause),
		)
		close(p.stop)
		close(p.done)
		_ = p.client.Close()
	})
}

func (p *StreamProducer) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := p.client.Ping(ctx).Err()
			cancel()
			if err != nil {
				p.lost(err)
				return
			}
		}
	}
}
