package common

import (
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/uploadsim/internal/mimeclass"
	"github.com/NamanBalaji/uploadsim/internal/status"
)

// FileDescriptor is what the file picker hands over on selection.
type FileDescriptor struct {
	Name         string
	MimeTypeHint string
}

// UploadTask is one tracked upload. Values returned by the registry are
// copies and never alias registry storage.
type UploadTask struct {
	ID          uuid.UUID
	DisplayName string
	MimeType    string
	MimeClass   mimeclass.Class
	Progress    float64
	State       status.State
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Percentage returns progress rounded to a whole percent.
func (t UploadTask) Percentage() int {
	return int(t.Progress*100 + 0.5)
}

// Stats contains aggregated counts across all tracked tasks.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}
