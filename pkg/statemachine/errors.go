package statemachine

import (
	"errors"
	"fmt"
)

// ErrStateMismatch is returned by CompareAndTransition when the machine is
// not in the expected state.
var ErrStateMismatch = errors.New("statemachine: current state does not match expected state")

// ErrNoTransitionAvailable indicates the table has no edge between two states.
type ErrNoTransitionAvailable struct {
	From string
	To   string
}

func (e *ErrNoTransitionAvailable) Error() string {
	return fmt.Sprintf("no transition available from state '%s' to state '%s'", e.From, e.To)
}

func NewErrNoTransitionAvailable(from, to any) *ErrNoTransitionAvailable {
	return &ErrNoTransitionAvailable{
		From: fmt.Sprint(from),
		To:   fmt.Sprint(to),
	}
}

func IsNoTransitionAvailableError(err error) bool {
	var e *ErrNoTransitionAvailable
	return errors.As(err, &e)
}
