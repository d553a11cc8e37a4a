package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for the store. A fetch by ID that finds nothing is not an error: Get*
// methods return (nil, nil). ErrNotFound is only used when a write targets a missing record.
var (
	// ErrNotFound indicates an update targeted a record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoRowsAffected indicates an UPDATE affected zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)

// ValidationError is returned before any database call when input is incomplete or invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
