package fanout

import "errors"

var (
	ErrNilSender        = errors.New("fanout: sender is nil")
	ErrNilGate          = errors.New("fanout: gate is nil")
	ErrNilReader        = errors.New("fanout: reader is nil")
	ErrNilHandler       = errors.New("fanout: handler is nil")
	ErrInvalidEnvelope  = errors.New("fanout: invalid envelope")
	ErrUnknownEventType = errors.New("fanout: unknown event type")
	ErrMissingPostOwner = errors.New("fanout: post owner is missing from payload")
	ErrAlreadyStarted   = errors.New("fanout: consumer already started")
	ErrNotStarted       = errors.New("fanout: consumer not started")
	ErrShutdownTimeout  = errors.New("fanout: timed out waiting for in-flight messages")
)
