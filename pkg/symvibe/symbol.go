// Package symvibe interns strings into symbols: small comparable handles that
// are equal exactly when their contents are equal.
//
// A Symbol is the address of the canonical copy of its content inside a
// Registry. Comparing, hashing and copying a Symbol never touches the string
// bytes, and reading the content back with String takes no lock: the
// canonical copy is immutable and never moves or gets freed.
//
// Symbols are never reclaimed. Interning unbounded runtime data (user input,
// request IDs) grows the registry for the rest of the process; intern only
// identifiers, tags, keys and other trusted, mostly static strings.
package symvibe

import (
	"cmp"
	"fmt"

	"github.com/sqlvibe/symvibe/internal/DS"
)

// Symbol is an interned string.
//
// Two symbols from the same Registry are == exactly when their contents are
// equal. Symbols are usable as map keys; they hash by address, not content.
// The zero Symbol is not produced by interning and reads as "".
type Symbol struct {
	rec *DS.Record
}

// String returns the symbol's content. It is a plain memory read and is safe
// to call from any goroutine without synchronization.
func (s Symbol) String() string {
	if s.rec == nil {
		return ""
	}
	return s.rec.String()
}

// GoString implements fmt.GoStringer.
func (s Symbol) GoString() string {
	if s.rec == nil {
		return "symvibe.Symbol{}"
	}
	return fmt.Sprintf("symvibe.Symbol(%q)", s.rec.String())
}

// IsZero reports whether s is the zero Symbol.
func (s Symbol) IsZero() bool { return s.rec == nil }

// Len returns the length of the content in bytes.
func (s Symbol) Len() int { return len(s.String()) }

// IsEmpty reports whether the content is the empty string.
func (s Symbol) IsEmpty() bool { return s.Len() == 0 }

// Is compares the content with str. Unlike ==, this inspects bytes.
func (s Symbol) Is(str string) bool {
	return s.rec != nil && s.rec.String() == str
}

// Addr returns the symbol's address as an integer, for handing a symbol
// through code that cannot carry Go pointers. Registry.FromAddr converts it
// back. Zero for the zero Symbol.
func (s Symbol) Addr() uint64 {
	if s.rec == nil {
		return 0
	}
	return uint64(s.rec.Addr())
}

// Compare orders symbols by address. The order is total and stable for the
// life of the process but unrelated to lexical order of the contents.
func (s Symbol) Compare(other Symbol) int {
	return cmp.Compare(s.Addr(), other.Addr())
}

// MarshalText encodes the symbol as its content.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText interns text in the global registry.
func (s *Symbol) UnmarshalText(text []byte) error {
	sym, err := Global().InternBytes(text)
	if err != nil {
		return err
	}
	*s = sym
	return nil
}
