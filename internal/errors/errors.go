package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
)

type ErrorCategory string

const (
	CategoryInvariant ErrorCategory = "INVARIANT" // Programming bugs, e.g. id reuse
	CategoryResource  ErrorCategory = "RESOURCE"  // Timer source refused a schedule
	CategoryLifecycle ErrorCategory = "LIFECYCLE" // Operation on a closed engine
	CategoryConfig    ErrorCategory = "CONFIG"    // Invalid configuration
	CategoryUnknown   ErrorCategory = "UNKNOWN"   // Unclassified errors
)

// UploadError represents an error raised by the upload tracking engine.
type UploadError struct {
	Err       error         // Original error
	Category  ErrorCategory // General category
	Op        string        // Operation that failed
	TaskID    uuid.UUID     // Task involved, uuid.Nil when none
	Timestamp time.Time     // When the error occurred
}

// Error implements the error interface
func (e *UploadError) Error() string {
	if e.TaskID == uuid.Nil {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
	}

	return fmt.Sprintf("[%s] %s %s: %v", e.Category, e.Op, e.TaskID, e.Err)
}

// Unwrap provides the underlying cause for error unwrapping (compatible with errors.As)
func (e *UploadError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrDuplicateTask      = New("duplicate task id")
	ErrSchedulerExhausted = New("no timer available")
	ErrTaskNotFound       = New("task not found")
	ErrEngineClosed       = New("engine is closed")
	ErrAlreadyStarted     = New("simulator already started")
	ErrSimulatorStopped   = New("simulator stopped")
	ErrInvalidConfig      = New("invalid configuration")
)

// NewInvariantError creates an error for a broken internal invariant.
func NewInvariantError(err error, op string, id uuid.UUID) *UploadError {
	return newError(err, CategoryInvariant, op, id)
}

// NewResourceError creates an error for a resource that could not be acquired.
func NewResourceError(err error, op string, id uuid.UUID) *UploadError {
	return newError(err, CategoryResource, op, id)
}

// NewLifecycleError creates an error for an operation issued in the wrong lifecycle phase.
func NewLifecycleError(err error, op string, id uuid.UUID) *UploadError {
	return newError(err, CategoryLifecycle, op, id)
}

// NewConfigError creates a configuration error.
func NewConfigError(err error, op string) *UploadError {
	return newError(err, CategoryConfig, op, uuid.Nil)
}

func newError(err error, category ErrorCategory, op string, id uuid.UUID) *UploadError {
	return &UploadError{
		Err:       err,
		Category:  category,
		Op:        op,
		TaskID:    id,
		Timestamp: time.Now(),
	}
}

// IsRetryable reports whether the caller may retry the failed operation.
// Only resource acquisition failures qualify.
func IsRetryable(err error) bool {
	return GetCategory(err) == CategoryResource
}

// IsInvariantViolation reports whether err signals a programming bug.
func IsInvariantViolation(err error) bool {
	return GetCategory(err) == CategoryInvariant
}

// GetCategory extracts the category from an error
func GetCategory(err error) ErrorCategory {
	var uploadErr *UploadError
	if As(err, &uploadErr) {
		return uploadErr.Category
	}

	return CategoryUnknown
}

// GetTaskID extracts the task id from an error if available
func GetTaskID(err error) (uuid.UUID, bool) {
	var uploadErr *UploadError
	if As(err, &uploadErr) && uploadErr.TaskID != uuid.Nil {
		return uploadErr.TaskID, true
	}

	return uuid.Nil, false
}
