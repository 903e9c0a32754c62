package bus

import "errors"

var (
	ErrEmptyTopic       = errors.New("bus: topic is required")
	ErrEmptyKey         = errors.New("bus: record key is required")
	ErrProducerClosed   = errors.New("bus: producer is closed")
	ErrSendFailed       = errors.New("bus: failed to send record")
	ErrReadFailed       = errors.New("bus: failed to read records")
	ErrAckFailed        = errors.New("bus: failed to acknowledge record")
	ErrClaimFailed      = errors.New("bus: failed to claim pending records")
	ErrCreateGroup      = errors.New("bus: failed to create consumer group")
	ErrNoTopics         = errors.New("bus: at least one topic is required")
	ErrNilClient        = errors.New("bus: redis client is nil")
)
