// Package statemachine provides a small, thread-safe state holder whose
// transitions are validated against an explicit table.
//
// The table maps each state to the states it may move to. Any transition not
// listed is rejected with *ErrNoTransitionAvailable and leaves the current
// state unchanged.
//
//	m := statemachine.New(Disconnected, statemachine.Table[State]{
//		Disconnected: {Connecting},
//		Connecting:   {Connected, Disconnected},
//		Connected:    {Disconnected},
//	})
//	if err := m.Transition(Connecting); err != nil {
//		// invalid move
//	}
package statemachine
