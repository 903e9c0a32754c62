package statemachine

import (
	"slices"
	"sync"
)

// Table lists, for every state, the states it may transition to.
type Table[S comparable] map[S][]S

// Allows reports whether the table has an edge from -> to.
func (t Table[S]) Allows(from, to S) bool {
	return slices.Contains(t[from], to)
}

// Machine holds the current state of one entity.
type Machine[S comparable] struct {
	mu       sync.RWMutex
	current  S
	table    Table[S]
	onChange func(from, to S)
}

// Option configures a Machine.
type Option[S comparable] func(*Machine[S])

// WithOnChange registers a callback invoked after every successful
// transition, while the machine lock is held. It must not call back into
// the machine.
func WithOnChange[S comparable](fn func(from, to S)) Option[S] {
	return func(m *Machine[S]) {
		m.onChange = fn
	}
}

func New[S comparable](initial S, table Table[S], opts ...Option[S]) *Machine[S] {
	m := &Machine[S]{
		current: initial,
		table:   table,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine[S]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Can reports whether a transition to `to` is currently allowed.
func (m *Machine[S]) Can(to S) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Allows(m.current, to)
}

// Transition moves to `to` if the table allows it from the current state.
func (m *Machine[S]) Transition(to S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

// CompareAndTransition moves from `from` to `to` only if the machine is
// currently in `from`.
func (m *Machine[S]) CompareAndTransition(from, to S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != from {
		return ErrStateMismatch
	}
	return m.transitionLocked(to)
}

func (m *Machine[S]) transitionLocked(to S) error {
	from := m.current
	if !m.table.Allows(from, to) {
		return NewErrNoTransitionAvailable(from, to)
	}
	m.current = to
	if m.onChange != nil {
		m.onChange(from, to)
	}
	return nil
}
