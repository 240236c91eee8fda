package entity

import (
	"errors"
	"fmt"
)

var (
	ErrDataNotFound      = errors.New("data not found")
	ErrConflictingData   = errors.New("data conflicts with existing data in unique column")
	ErrInvalidData       = errors.New("invalid data")
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", ErrInvalidData)
	ErrConfigPathNotSet  = errors.New("CONFIG_PATH not set and -config flag not provided")
)

// ValidationError reports a single rejected field. It matches ErrInvalidData
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidData
}
