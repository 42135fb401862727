// Package apperror defines the error kinds shared by repositories, services
// and handlers. Handlers map a kind to an HTTP status with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrExternalService = errors.New("external service error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)

// Error carries a user-facing message together with its kind and an optional cause.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Message returns the message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.err }

func newf(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) error {
	return newf(ErrValidation, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return newf(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return newf(ErrConflict, format, args...)
}

func Unauthorizedf(format string, args ...interface{}) error {
	return newf(ErrUnauthorized, format, args...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return newf(ErrForbidden, format, args...)
}

// External wraps a failed call to a remote dependency.
func External(msg string, cause error) error {
	return &Error{kind: ErrExternalService, msg: msg, err: cause}
}

// Message extracts the user-facing message of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
