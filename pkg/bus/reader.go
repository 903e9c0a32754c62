package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StreamReader reads partition streams through a Redis consumer group.
//
// The first Read of each partition takes over the group's pending entries
// that have been idle for ClaimMinIdle, so records left unacknowledged by a
// previous process are not stranded under its consumer name. It then returns
// this consumer's pending entries before any new ones.
type StreamReader struct {
	client     redis.UniversalClient
	cfg        Config
	consumer   string
	partitions []Partition

	mu      sync.Mutex
	drained map[string]bool
}

func NewStreamReader(client redis.UniversalClient, cfg Config, topics ...string) (*StreamReader, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	consumer := cfg.ConsumerName
	if consumer == "" {
		consumer = "consumer-" + uuid.NewString()
	}
	return &StreamReader{
		client:     client,
		cfg:        cfg,
		consumer:   consumer,
		partitions: Partitions(cfg, topics...),
		drained:    make(map[string]bool),
	}, nil
}

// Consumer returns the consumer name used within the group.
func (r *StreamReader) Consumer() string {
	return r.consumer
}

func (r *StreamReader) Partitions() []Partition {
	out := make([]Partition, len(r.partitions))
	copy(out, r.partitions)
	return out
}

// EnsureGroups creates the consumer group on every partition stream,
// creating the streams if needed. Existing groups are left untouched.
func (r *StreamReader) EnsureGroups(ctx context.Context) error {
	for _, p := range r.partitions {
		err := r.client.XGroupCreateMkStream(ctx, p.Stream, r.cfg.Group, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return errors.Join(ErrCreateGroup, fmt.Errorf("stream %s: %w", p.Stream, err))
		}
	}
	return nil
}

// Read returns the next batch for p. It blocks up to BlockTimeout and returns
// an empty slice when nothing arrived.
func (r *StreamReader) Read(ctx context.Context, p Partition) ([]Message, error) {
	if !r.isDrained(p.Stream) {
		if err := r.claim(ctx, p); err != nil {
			return nil, err
		}
		msgs, err := r.read(ctx, p, "0", -1)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			return msgs, nil
		}
		r.markDrained(p.Stream)
	}
	return r.read(ctx, p, ">", r.cfg.BlockTimeout)
}

func (r *StreamReader) Ack(ctx context.Context, msg Message) error {
	if err := r.client.XAck(ctx, msg.Partition.Stream, r.cfg.Group, msg.ID).Err(); err != nil {
		return errors.Join(ErrAckFailed, err)
	}
	return nil
}

// claim moves idle pending entries of the group to this consumer.
func (r *StreamReader) claim(ctx context.Context, p Partition) error {
	start := "0-0"
	for {
		_, next, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   p.Stream,
			Group:    r.cfg.Group,
			Consumer: r.consumer,
			MinIdle:  max(r.cfg.ClaimMinIdle, 0),
			Start:    start,
			Count:    max(r.cfg.BatchSize, 1),
		}).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return errors.Join(ErrClaimFailed, fmt.Errorf("stream %s: %w", p.Stream, err))
		}
		if next == "" || next == "0-0" || next == start {
			return nil
		}
		start = next
	}
}

func (r *StreamReader) read(ctx context.Context, p Partition, id string, block time.Duration) ([]Message, error) {
	args := &redis.XReadGroupArgs{
		Group:    r.cfg.Group,
		Consumer: r.consumer,
		Streams:  []string{p.Stream, id},
		Count:    r.cfg.BatchSize,
		Block:    block,
	}
	res, err := r.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrReadFailed, err)
	}

	var out []Message
	for _, stream := range res {
		for _, entry := range stream.Messages {
			out = append(out, toMessage(p, entry))
		}
	}
	return out, nil
}

func (r *StreamReader) isDrained(stream string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drained[stream]
}

func (r *StreamReader) markDrained(stream string) {
	r.mu.Lock()
	r.drained[stream] = true
	r.mu.Unlock()
}

func toMessage(p Partition, entry redis.XMessage) Message {
	msg := Message{ID: entry.ID, Partition: p}
	msg.Key, _ = entry.Values["key"].(string)
	msg.Type, _ = entry.Values["type"].(string)
	if v, ok := entry.Values["value"].(string); ok {
		msg.Value = []byte(v)
	}
	return msg
}
