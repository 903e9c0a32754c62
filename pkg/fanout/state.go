package fanout

import "github.com/dmitrymomot/pulse/pkg/statemachine"

// PartitionState is what a partition loop is doing.
type PartitionState string

const (
	StateIdle       PartitionState = "idle"
	StateReceiving  PartitionState = "receiving"
	StateProcessing PartitionState = "processing"
)

var partitionTransitions = statemachine.Table[PartitionState]{
	StateIdle:       {StateReceiving},
	StateReceiving:  {StateProcessing, StateIdle},
	StateProcessing: {StateIdle},
}
