package errors

import "fmt"

// ErrorCode represents a symvibe error code. Numbering follows SQLite: the
// low byte is the primary code, the higher bits select an extended code.
type ErrorCode int32

// Primary error codes.
const (
	SVDB_OK       ErrorCode = 0
	SVDB_ERROR    ErrorCode = 1
	SVDB_INTERNAL ErrorCode = 2
	SVDB_NOMEM    ErrorCode = 7
	SVDB_MISUSE   ErrorCode = 21
	SVDB_RANGE    ErrorCode = 25
)

// Extended error codes (256+).
const (
	// NOMEM extended codes
	SVDB_NOMEM_ARENA ErrorCode = 263 // 7 | (1 << 8)
	SVDB_NOMEM_CHUNK ErrorCode = 519 // 7 | (2 << 8)

	// MISUSE extended codes
	SVDB_MISUSE_SYMBOL ErrorCode = 277 // 21 | (1 << 8)
	SVDB_MISUSE_ADDR   ErrorCode = 533 // 21 | (2 << 8)
)

var primaryCodeNames = map[ErrorCode]string{
	SVDB_OK:       "SVDB_OK",
	SVDB_ERROR:    "SVDB_ERROR",
	SVDB_INTERNAL: "SVDB_INTERNAL",
	SVDB_NOMEM:    "SVDB_NOMEM",
	SVDB_MISUSE:   "SVDB_MISUSE",
	SVDB_RANGE:    "SVDB_RANGE",
}

var extendedCodeNames = map[ErrorCode]string{
	SVDB_NOMEM_ARENA:   "SVDB_NOMEM_ARENA",
	SVDB_NOMEM_CHUNK:   "SVDB_NOMEM_CHUNK",
	SVDB_MISUSE_SYMBOL: "SVDB_MISUSE_SYMBOL",
	SVDB_MISUSE_ADDR:   "SVDB_MISUSE_ADDR",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := primaryCodeNames[c]; ok {
		return name
	}
	if name, ok := extendedCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("SVDB_UNKNOWN(%d)", int32(c))
}

// Primary extracts the base (primary) error code from an extended error code.
// For primary codes this returns the code unchanged.
func (c ErrorCode) Primary() ErrorCode {
	return ErrorCode(int32(c) & 0xFF)
}
