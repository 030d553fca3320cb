package service

import (
	"errors"
)

// Error kinds. Every failure returned by the services wraps exactly one of
// these so callers can classify it with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal failure")
)

// Error is a classified failure carrying the message that is safe to show a
// client. Err holds the internal cause and is never shown.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string, cause error) *Error {
	return newError(ErrValidation, message, cause)
}

func NotFound(message string, cause error) *Error {
	return newError(ErrNotFound, message, cause)
}

func Unauthorized(message string, cause error) *Error {
	return newError(ErrUnauthorized, message, cause)
}

func Forbidden(message string, cause error) *Error {
	return newError(ErrForbidden, message, cause)
}

func Conflict(message string, cause error) *Error {
	return newError(ErrConflict, message, cause)
}

func Internal(message string, cause error) *Error {
	return newError(ErrInternal, message, cause)
}
