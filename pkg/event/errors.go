package event

import "errors"

var (
	ErrMissingTargetID   = errors.New("event: target id is required")
	ErrMissingActorID    = errors.New("event: actor id is required")
	ErrMissingEventType  = errors.New("event: event type is required")
	ErrInvalidTargetType = errors.New("event: invalid target type")
	ErrUnknownEventType  = errors.New("event: unknown event type")
	ErrDecodeEnvelope    = errors.New("event: failed to decode envelope")
	ErrEncodeEnvelope    = errors.New("event: failed to encode envelope")
	ErrDecodePayload     = errors.New("event: failed to decode payload")
)
