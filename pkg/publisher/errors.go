package publisher

import "errors"

var (
	ErrNilDialer     = errors.New("publisher: dialer is nil")
	ErrConnectFailed = errors.New("publisher: failed to connect to bus")
	ErrClosed        = errors.New("publisher: closed")
	ErrNotConnected  = errors.New("publisher: not connected")
)
