package tasks

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by validation errors that reference a missing task
var ErrNotFound = errors.New("task not found")

// ValidationError reports malformed input or an invalid state transition.
// The caller can always recover by correcting the input.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func newNotFoundError(id int) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("Task with ID %d not found", id),
		Err:     ErrNotFound,
	}
}

// StorageError reports that the backing medium could not be read or written
type StorageError struct {
	Op   string // load or save
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s tasks: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s tasks at %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage reports whether err is, or wraps, a StorageError
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
