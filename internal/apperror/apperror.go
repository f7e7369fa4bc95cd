// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes with errors.Is/errors.As. Keeping the taxonomy in one place means
// no layer above the handlers ever needs to know about HTTP codes, and no
// layer below them ever invents an ad-hoc error string the client has to
// pattern-match.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per error class. errors.Is against these drives
// the HTTP status mapping in the handler package.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// AppError wraps a sentinel with a user-displayable message.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable, safe to show to the client
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationFailed reports bad or missing input on the named field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Auth reports a missing, invalid, or expired credential.
// HTTP handlers map this to 401 Unauthorized.
func Auth(message string) *AppError {
	return &AppError{
		Err:     ErrAuth,
		Message: message,
	}
}

// Conflict reports a uniqueness violation on the named field.
// HTTP handlers map this to 409 Conflict.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// NotFound reports a missing resource. Callers scope every lookup by
// owner, so "someone else's note" and "no such note" are deliberately
// indistinguishable here.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Forbidden reports an ownership mismatch on a batch operation.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
