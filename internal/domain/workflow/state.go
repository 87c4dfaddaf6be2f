package workflow

// State is a position in the IT incident confirmation lifecycle
type State string

const (
	// StateAwaitingResolution: the ticket is not yet resolved by IT
	StateAwaitingResolution State = "AWAITING_RESOLUTION"
	// StateAwaitingConfirmation: resolved, the employee has not responded
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	// StateSubmitting: a confirm/reject action is in flight
	StateSubmitting State = "SUBMITTING"
	// StateClosed: the employee confirmed or rejected the resolution
	StateClosed State = "CLOSED"
)

var validStates = map[State]bool{
	StateAwaitingResolution:   true,
	StateAwaitingConfirmation: true,
	StateSubmitting:           true,
	StateClosed:               true,
}

// IsTerminal returns true if no further transitions are possible
func (s State) IsTerminal() bool {
	return s == StateClosed
}

// AcceptsAction reports whether the employee may confirm or reject now
func (s State) AcceptsAction() bool {
	return s == StateAwaitingConfirmation
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
