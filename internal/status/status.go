package status

import "fmt"

// State is the lifecycle state of an upload task.
type State int32

const (
	Pending State = iota
	InProgress
	Completed
	Removed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case InProgress:
		return "InProgress"
	case Completed:
		return "Completed"
	case Removed:
		return "Removed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsTerminal reports whether no further transitions can leave s.
func (s State) IsTerminal() bool {
	return s == Completed || s == Removed
}
