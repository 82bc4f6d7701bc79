package DS

import "unsafe"

// Record is the canonical copy of one distinct string content. Its address is
// the identity of the symbol that refers to it.
//
// str points into an arena chunk and never changes once the record is placed.
// next links records whose contents share a hash; it is written only while
// the owning Index holds its write lock, before the record is published.
type Record struct {
	str  string
	hash uint64
	next *Record
}

// recordSize is the stride between records within a slab.
const recordSize = unsafe.Sizeof(Record{})

// String returns the interned content. It reads immutable memory only.
func (r *Record) String() string { return r.str }

// Hash returns the content hash computed when the record was placed.
func (r *Record) Hash() uint64 { return r.hash }

// Addr returns the record's address.
func (r *Record) Addr() uintptr { return uintptr(unsafe.Pointer(r)) }
