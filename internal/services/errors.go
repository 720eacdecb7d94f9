package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("complaint not found")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// forbidden wraps ErrForbidden with the reason shown to the caller.
func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}
