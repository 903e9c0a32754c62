package publisher

import "github.com/dmitrymomot/pulse/pkg/statemachine"

// State is the connection state of a Publisher.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

var transitions = statemachine.Table[State]{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateConnected, StateDisconnected},
	StateConnected:    {StateDisconnected},
}
