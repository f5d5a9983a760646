package validation

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError describes malformed caller input.
// It is always surfaced to the caller and never queued for replay.
type ValidationError struct {
	Field   string // Field имя поля, не прошедшего проверку (может быть пустым)
	Message string // Message человекочитаемое описание проблемы
}

// Error implements error
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Errorf creates a ValidationError for field
func Errorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err (or any error it wraps) is a ValidationError
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
