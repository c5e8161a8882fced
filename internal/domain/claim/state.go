package claim

import (
	"errors"
	"fmt"
)

// State is a position in the claim pipeline. Transitions are strictly
// sequential; no stage may be skipped.
type State string

const (
	StateReceived       State = "received"
	StatePolicyChecked  State = "policy_checked"
	StateRejected       State = "rejected"
	StateAssessed       State = "assessed"
	StateWeatherChecked State = "weather_checked"
	StateDecided        State = "decided"
	StatePaid           State = "paid"
	StateDenied         State = "denied"
	StateDone           State = "done"
)

var ErrInvalidTransition = errors.New("invalid pipeline transition")

var transitions = map[State][]State{
	StateReceived:       {StatePolicyChecked, StateRejected},
	StatePolicyChecked:  {StateAssessed},
	StateAssessed:       {StateWeatherChecked},
	StateWeatherChecked: {StateDecided},
	StateDecided:        {StatePaid, StateDenied},
	StatePaid:           {StateDone},
	StateDenied:         {StateDone},
	// StateRejected and StateDone are terminal.
}

// Advance validates a single pipeline step and returns the new state.
func Advance(from, to State) (State, error) {
	for _, next := range transitions[from] {
		if next == to {
			return to, nil
		}
	}
	return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
