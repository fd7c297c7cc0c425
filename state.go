package waitfor

// State represents the lifecycle phase of a [Poller] run.
//
// State is a string type that can hold one of four predefined values:
// [StateStalled], [StatePending], [StateResolved], or [StateRejected].
// Using a string type allows for human-readable logging while maintaining
// type safety through the defined constants.
type State string

const (
	// StateStalled indicates the poller has been created but no trial of the
	// current run has been evaluated yet. This is the initial state, and the
	// permanent state of a poller whose condition is nil.
	StateStalled State = "stalled"

	// StatePending indicates at least one trial of the current run has been
	// evaluated and the run has not yet settled.
	StatePending State = "pending"

	// StateResolved indicates the condition became true within the permitted
	// number of trials. Terminal for the run.
	StateResolved State = "resolved"

	// StateRejected indicates the condition never became true within the
	// permitted number of trials. Terminal for the run.
	StateRejected State = "rejected"
)

// String returns the string representation of the state.
// This implements the fmt.Stringer interface.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether the state is [StateResolved] or [StateRejected].
// Once a run reaches a terminal state, no further trials occur for that run.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateRejected
}
