package symvibe

import (
	"github.com/sqlvibe/symvibe/internal/SF/errors"
)

// Error is the structured error returned by registry operations.
type Error = errors.Error

// ErrorCode classifies an Error.
type ErrorCode = errors.ErrorCode

const (
	SVDB_OK            = errors.SVDB_OK
	SVDB_ERROR         = errors.SVDB_ERROR
	SVDB_INTERNAL      = errors.SVDB_INTERNAL
	SVDB_NOMEM         = errors.SVDB_NOMEM
	SVDB_MISUSE        = errors.SVDB_MISUSE
	SVDB_RANGE         = errors.SVDB_RANGE
	SVDB_NOMEM_ARENA   = errors.SVDB_NOMEM_ARENA
	SVDB_NOMEM_CHUNK   = errors.SVDB_NOMEM_CHUNK
	SVDB_MISUSE_SYMBOL = errors.SVDB_MISUSE_SYMBOL
	SVDB_MISUSE_ADDR   = errors.SVDB_MISUSE_ADDR
)

var (
	// ErrArenaExhausted matches, via errors.Is, every allocation failure.
	// The registry stays consistent but the failed content has no symbol.
	ErrArenaExhausted = errors.NewError(SVDB_NOMEM, "arena exhausted")

	// ErrInvalidSymbol matches, via errors.Is, every validation failure of a
	// symbol not owned by the registry.
	ErrInvalidSymbol = errors.NewError(SVDB_MISUSE, "invalid symbol")
)

// ErrorCodeOf returns the ErrorCode carried by err; SVDB_OK for nil and
// SVDB_ERROR for errors from outside this package.
func ErrorCodeOf(err error) ErrorCode {
	return errors.ErrorCodeOf(err)
}

// IsErrorCode reports whether err carries code. A primary code matches all of
// its extended codes.
func IsErrorCode(err error, code ErrorCode) bool {
	return errors.IsErrorCode(err, code)
}
