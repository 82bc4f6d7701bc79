// Package errors defines the coded error type shared by the arena, the index
// and the public registry.
package errors

import (
	"errors"
	"fmt"
)

// Error is a structured symvibe error carrying an error code, a human-readable
// message, and an optional wrapped underlying error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped underlying error (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the wrapped error for use with errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches target. Two *Error values match when
// their Codes are equal, or when target carries a primary code equal to this
// error's primary code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	return t.Code == t.Code.Primary() && e.Code.Primary() == t.Code
}

// NewError creates a new *Error with the given code and message.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Errorf creates a new *Error with the given code and a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new *Error that wraps err.
func Wrap(code ErrorCode, err error, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// ErrorCodeOf returns the ErrorCode of err.
// Returns SVDB_OK for nil, the code from any *Error in the chain, or SVDB_ERROR
// for any other non-nil error.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return SVDB_OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return SVDB_ERROR
}

// IsErrorCode reports whether err carries the given error code. A primary code
// also matches any of its extended codes.
func IsErrorCode(err error, code ErrorCode) bool {
	got := ErrorCodeOf(err)
	if got == code {
		return true
	}
	return code == code.Primary() && got.Primary() == code
}
