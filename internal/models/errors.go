package models

import (
	"errors"
	"fmt"
)

var (
	ErrInternal           = errors.New("internal server error")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrInvalidProject     = errors.New("project name is required")
	ErrInvalidTable       = errors.New("invalid table name")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
)

// ValidationError carries the field that failed validation. It unwraps
// to ErrValidation so callers can match the whole class with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
