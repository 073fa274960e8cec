package update

import "fmt"

// State is a step of one update request.
type State string

const (
	StatePending  State = "pending"
	StateFetching State = "fetching_current"
	StateNoChange State = "no_change"
	StateWriting  State = "writing"
	StateSuccess  State = "success"
	StateFailed   State = "failed"
)

var transitions = map[State][]State{
	StatePending:  {StateFetching, StateWriting, StateSuccess, StateFailed},
	StateFetching: {StateNoChange, StateWriting, StateFailed},
	StateNoChange: {StateSuccess},
	StateWriting:  {StateSuccess, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Tracker walks the state machine for one request.
type Tracker struct {
	state   State
	history []State
	observe func(State)
}

// NewTracker starts in StatePending.
func NewTracker(observe func(State)) *Tracker {
	t := &Tracker{state: StatePending, history: []State{StatePending}, observe: observe}
	if observe != nil {
		observe(StatePending)
	}
	return t
}

// To moves to the next state. Invalid transitions panic: they are programming errors.
func (t *Tracker) To(next State) {
	if !CanTransition(t.state, next) {
		panic(fmt.Sprintf("update: invalid transition %s -> %s", t.state, next))
	}
	t.state = next
	t.history = append(t.history, next)
	if t.observe != nil {
		t.observe(next)
	}
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// History returns every state visited, in order.
func (t *Tracker) History() []State {
	return append([]State(nil), t.history...)
}
