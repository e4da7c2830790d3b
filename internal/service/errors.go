package service

import (
	"errors"
	"fmt"
)

// Sentinel errors the API layer maps to status codes. Validation errors
// cover malformed input and absent referenced entities (400); not-found
// covers well-formed ids with no matching row (404).
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(entity string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}
