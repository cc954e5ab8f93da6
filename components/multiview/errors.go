package multiview

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation   = errors.New("multiview: validation failed")
	ErrNotFound     = errors.New("multiview: not found")
	ErrPrecondition = errors.New("multiview: precondition failed")
)

// ErrStorageKeyNotFound is returned by Storage implementations when a key was never saved.
var ErrStorageKeyNotFound = errors.New("multiview: storage key not found")

// Error carries the failing operation alongside its kind.
type Error struct {
	Kind    error
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return "multiview: " + e.Message
	}
	return fmt.Sprintf("multiview: %s: %s", e.Op, e.Message)
}

// Unwrap exposes the kind so errors.Is(err, ErrNotFound) works.
func (e *Error) Unwrap() error { return e.Kind }

func validationError(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func preconditionError(op, format string, args ...any) error {
	return &Error{Kind: ErrPrecondition, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a Validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err references a missing layout or panel.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsPrecondition reports whether err is a refused state transition.
func IsPrecondition(err error) bool { return errors.Is(err, ErrPrecondition) }
