// Package apperr defines the typed errors handlers translate into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

type Type string

const (
	TypeValidation Type = "VALIDATION"
	TypeNotFound   Type = "NOT_FOUND"
	TypeConflict   Type = "CONFLICT"
	TypeInternal   Type = "INTERNAL"
)

type Error struct {
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) error {
	return &Error{Type: TypeValidation, Message: message}
}

func NotFound(message string) error {
	return &Error{Type: TypeNotFound, Message: message}
}

func Conflict(message string) error {
	return &Error{Type: TypeConflict, Message: message}
}

func Internal(message string, err error) error {
	return &Error{Type: TypeInternal, Message: message, Err: err}
}

// TypeOf reports the Type of err, treating anything untyped as internal.
func TypeOf(err error) Type {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return TypeInternal
}

func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == TypeNotFound
}

func IsValidation(err error) bool {
	return err != nil && TypeOf(err) == TypeValidation
}
