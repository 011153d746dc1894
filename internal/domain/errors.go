package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")

	// ErrStorage wraps any unexpected persistence failure. The cause is for logs only.
	ErrStorage = errors.New("storage error")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every invalid field of one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when nothing was added, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
