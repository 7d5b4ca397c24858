package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the core error taxonomy. Services wrap these with
// %w and add detail; handlers classify with errors.Is to pick HTTP statuses.

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that forbids the
// requested action (validated entry, closed exercise, locked record).
var ErrConflict = errors.New("resource state conflict")

// ErrIntegrity indicates a broken hash chain.
var ErrIntegrity = errors.New("integrity violation")

// ErrForbidden indicates the acting user is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected failure not caused by the caller.
var ErrInternal = errors.New("internal error")

// AppError carries a status code alongside a wrapped cause. Repositories use
// it to report infrastructure failures without leaking SQL details upward.
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

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
