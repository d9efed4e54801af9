package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no record exists for the (community, id) pair.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCheckedIn rejects a second check-in.
	ErrAlreadyCheckedIn = errors.New("visitor already checked in")

	// ErrAlreadyCheckedOut rejects a second check-out.
	ErrAlreadyCheckedOut = errors.New("visitor already checked out")

	// ErrNotCheckedIn rejects a check-out before any check-in.
	ErrNotCheckedIn = errors.New("visitor has not checked in")

	// ErrAlreadyPicked rejects a second pickup of the same package.
	ErrAlreadyPicked = errors.New("package already picked up")
)

// ValidationError carries the offending field for 400 responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsConflict reports whether err is an invalid lifecycle transition.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyCheckedIn) || errors.Is(err, ErrAlreadyCheckedOut) || errors.Is(err, ErrAlreadyPicked)
}
