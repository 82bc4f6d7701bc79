package util

import (
	"fmt"
)

// Assert panics with a formatted message if the condition is false.
// This is used to catch programming errors in arena and index bookkeeping.
// Usage: util.Assert(off <= len(chunk), "offset %d past chunk end", off)
func Assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("Assertion failed: "+format, args...))
	}
}
