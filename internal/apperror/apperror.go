// Package apperror defines the application's error taxonomy.
//
// Every failure a handler can act on is an *AppError wrapping one of the
// sentinel errors below. Callers match with errors.Is against the sentinel and
// read the human-readable Message (and Field/Fields for validation failures)
// through errors.As.
//
//	ErrNotFound     → 404, an id did not resolve
//	ErrForbidden    → 403, a guard refused the request
//	ErrValidation   → 422, form input missing or malformed
//	ErrConflict     → a uniqueness invariant would break (duplicate email)
//	ErrUnauthorized → bad credentials at login
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error             // sentinel
	Message string            // human-readable message
	Field   string            // optional: first field causing the error
	Fields  map[string]string // optional: every invalid field → message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// Invalid reports several invalid fields at once. Field and Message are taken
// from the alphabetically first field so the error still prints something useful.
func Invalid(fields map[string]string) *AppError {
	first := ""
	for name := range fields {
		if first == "" || name < first {
			first = name
		}
	}
	return &AppError{
		Err:     ErrValidation,
		Message: fields[first],
		Field:   first,
		Fields:  fields,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict on %s", resource, key),
	}
}

// ConflictMessage is Conflict with a caller-chosen, user-facing message.
func ConflictMessage(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized reports failed credentials. The message is shown to the user
// as-is, so it must not leak anything beyond what is intended.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// FieldErrors returns the per-field messages carried by err, or nil when err
// is not a validation failure.
func FieldErrors(err error) map[string]string {
	var appErr *AppError
	if !errors.As(err, &appErr) || !errors.Is(err, ErrValidation) {
		return nil
	}
	if appErr.Fields != nil {
		return appErr.Fields
	}
	if appErr.Field != "" {
		return map[string]string{appErr.Field: appErr.Message}
	}
	return nil
}

// Message returns the user-facing message of err if it is an AppError.
func Message(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
