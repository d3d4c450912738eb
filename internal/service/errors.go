package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInference is returned when the inference client could not produce an answer.
	ErrInference = errors.New("failed to get answer")
	// ErrStorage is returned when the history store fails.
	ErrStorage = errors.New("failed to access history")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// wrapKind tags err with a sentinel so callers can match it with errors.Is
// while keeping the original error in the chain.
func wrapKind(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}
