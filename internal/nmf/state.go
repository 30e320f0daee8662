package nmf

import "fmt"

// State is the lifecycle state of an Engine.
//
//	Uninitialized -> Initialized -> Iterating -> Refitting -> Done
//
// Refitting is skipped when the refit pass is disabled.
type State int

// Engine states.
const (
	Uninitialized State = iota
	Initialized
	Iterating
	Refitting
	Done
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Iterating:
		return "iterating"
	case Refitting:
		return "refitting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
