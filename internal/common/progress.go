package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/uploadsim/internal/status"
)

type ChangeKind int32

const (
	ChangeInserted ChangeKind = iota
	ChangeActivated
	ChangeProgressed
	ChangeCompleted
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "Inserted"
	case ChangeActivated:
		return "Activated"
	case ChangeProgressed:
		return "Progressed"
	case ChangeCompleted:
		return "Completed"
	case ChangeRemoved:
		return "Removed"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Change is published after every registry mutation
type Change struct {
	TaskID    uuid.UUID
	Kind      ChangeKind
	State     status.State
	Progress  float64
	Timestamp time.Time
}
