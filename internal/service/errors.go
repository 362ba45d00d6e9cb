package service

import (
	"errors"
	"fmt"

	"inkwell/internal/storage"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrCycle is returned when a parent change would make an item its own ancestor.
	ErrCycle = errors.New("parent would create a cycle")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// storeError translates storage errors into service errors. A missing record
// becomes ErrNotFound; anything else is a storage fault wrapped with msg.
func storeError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return WrapError(err, msg)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
