package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidState indicates an illegal lifecycle transition was attempted.
var ErrInvalidState = errors.New("invalid state transition")

// ErrConcurrencyConflict indicates a transient conflict between concurrent
// writers; callers should retry the whole operation.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrPersistence indicates an underlying storage failure. Fatal to the
// current request; not retried automatically by the core.
var ErrPersistence = errors.New("persistence failure")

// AppError wraps an underlying error with an HTTP-ish status code and a
// caller-facing message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
