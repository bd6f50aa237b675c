package opening

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a single open request.
type State string

const (
	StateRequested     State = "REQUESTED"
	StateStockReserved State = "STOCK_RESERVED"
	StateDrawn         State = "DRAWN"
	StateApplied       State = "APPLIED"
	StateReleased      State = "RELEASED"
	StateFailed        State = "FAILED"
)

// ErrIllegalTransition is returned when a request tries to skip or revisit a state.
var ErrIllegalTransition = errors.New(ErrContextIllegalTransition)

var transitions = map[State][]State{
	StateRequested:     {StateStockReserved, StateFailed},
	StateStockReserved: {StateDrawn, StateReleased},
	StateDrawn:         {StateApplied, StateReleased},
	StateReleased:      {StateFailed},
}

// CanTransitionTo reports whether next directly follows s.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// flow tracks one request through its states.
type flow struct {
	state   State
	history []State
}

func newFlow() *flow {
	return &flow{state: StateRequested, history: []State{StateRequested}}
}

func (f *flow) advance(next State) error {
	if !f.state.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, f.state, next)
	}
	f.state = next
	f.history = append(f.history, next)
	return nil
}

// Current returns the current state.
func (f *flow) Current() State {
	return f.state
}
