package realtime

import "errors"

var (
	ErrEmptyRoom      = errors.New("realtime: room is required")
	ErrEncodeFrame    = errors.New("realtime: failed to encode frame")
	ErrRelayFailed    = errors.New("realtime: relay rejected notification")
	ErrAckTimeout     = errors.New("realtime: timed out waiting for relay acknowledgement")
	ErrConnectionLost = errors.New("realtime: relay connection lost")
	ErrDialFailed     = errors.New("realtime: failed to connect to relay")
	ErrClientClosed   = errors.New("realtime: producer client closed")
)
