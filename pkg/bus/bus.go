package bus

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Record is what a producer writes to a topic.
type Record struct {
	Key   string
	Type  string
	Value []byte
}

// Producer writes records to topics. Done is closed once the producer's
// connection is lost or the producer is closed; a lost producer is never
// reused.
type Producer interface {
	Send(ctx context.Context, topic string, rec Record) error
	Done() <-chan struct{}
	Close() error
}

// Dialer opens producer connections.
type Dialer interface {
	Dial(ctx context.Context) (Producer, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Producer, error)

func (f DialerFunc) Dial(ctx context.Context) (Producer, error) {
	return f(ctx)
}

// Partition identifies one partition stream of a topic.
type Partition struct {
	Topic  string
	Index  int
	Stream string
}

func (p Partition) String() string {
	return p.Stream
}

// Message is a record read from a partition.
type Message struct {
	ID        string
	Partition Partition
	Key       string
	Type      string
	Value     []byte
}

// Reader consumes partitions as a member of a consumer group.
type Reader interface {
	Partitions() []Partition
	Read(ctx context.Context, p Partition) ([]Message, error)
	Ack(ctx context.Context, msg Message) error
}

// PartitionFor maps key onto one of n partitions using FNV-1a.
func PartitionFor(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// StreamName returns the Redis stream backing partition p of topic.
func StreamName(prefix, topic string, p int) string {
	return fmt.Sprintf("%s%s:%d", prefix, topic, p)
}

// Partitions returns every partition of the given topics.
func Partitions(cfg Config, topics ...string) []Partition {
	n := cfg.partitions()
	out := make([]Partition, 0, n*len(topics))
	for _, topic := range topics {
		for i := range n {
			out = append(out, Partition{
				Topic:  topic,
				Index:  i,
				Stream: StreamName(cfg.StreamPrefix, topic, i),
			})
		}
	}
	return out
}
