package service

import (
	"errors"
	"strings"

	"golang-stock-tracker/internal/tracker/dto"
)

var (
	// ErrInvalidArgument marks a violated calculation precondition.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks stored data that cannot occur for a valid position.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound marks a reference to a position that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidationFailed is matched by every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError carries the complete list of business-rule violations.
type ValidationError struct {
	Result dto.ValidationResult
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Result.Errors))
	for _, fe := range e.Result.Errors {
		messages = append(messages, fe.Message)
	}
	return "validation failed: " + strings.Join(messages, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError(result dto.ValidationResult) error {
	return &ValidationError{Result: result}
}
