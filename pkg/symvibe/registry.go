package symvibe

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/swiss"

	"github.com/sqlvibe/symvibe/internal/DS"
	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/internal/SF/util"
	"github.com/sqlvibe/symvibe/internal/log"
)

// Options configures a Registry. The zero value is valid and selects the
// defaults.
type Options struct {
	// ChunkSize is the size in bytes of each arena chunk holding content.
	ChunkSize int `yaml:"chunk_size"`
	// SlabSize is the number of symbols per arena slab.
	SlabSize int `yaml:"slab_size"`
	// MaxBytes caps the memory the arena may reserve. Interning fails with
	// ErrArenaExhausted once it would be exceeded. 0 means unlimited.
	MaxBytes int64 `yaml:"max_bytes"`
	// InitialCapacity pre-sizes the index for that many symbols.
	InitialCapacity int `yaml:"initial_capacity"`
	// ValidateSymbols makes Resolve check that a symbol belongs to this
	// registry before reading it. Meant for debugging; String stays unchecked.
	ValidateSymbols bool `yaml:"validate_symbols"`
}

// DefaultOptions returns the options used by the global registry.
func DefaultOptions() Options {
	return Options{InitialCapacity: 1024}
}

// Validate reports configuration values the arena cannot work with.
func (o Options) Validate() error {
	switch {
	case o.ChunkSize < 0:
		return errors.Errorf(SVDB_RANGE, "chunk size %d is negative", o.ChunkSize)
	case o.ChunkSize > 0 && o.ChunkSize < DS.MinChunkSize:
		return errors.Errorf(SVDB_RANGE, "chunk size %d below minimum %d", o.ChunkSize, DS.MinChunkSize)
	case o.SlabSize < 0:
		return errors.Errorf(SVDB_RANGE, "slab size %d is negative", o.SlabSize)
	case o.SlabSize > 0 && o.SlabSize < DS.MinSlabSize:
		return errors.Errorf(SVDB_RANGE, "slab size %d below minimum %d", o.SlabSize, DS.MinSlabSize)
	case o.MaxBytes < 0:
		return errors.Errorf(SVDB_RANGE, "max bytes %d is negative", o.MaxBytes)
	case o.InitialCapacity < 0:
		return errors.Errorf(SVDB_RANGE, "initial capacity %d is negative", o.InitialCapacity)
	}
	return nil
}

// Stats is a snapshot of a registry's size and activity counters.
type Stats = DS.Stats

// Registry is a concurrency-safe intern table. All methods may be called from
// multiple goroutines.
//
// Lookups of known content share a read lock; placing new content takes a
// write lock. Reading a symbol's content takes no lock at all.
type Registry struct {
	index    *DS.Index
	validate bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) (*Registry, error) {
	return newRegistry(opts, nil)
}

func newRegistry(opts Options, hash DS.HashFunc) (*Registry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	arena := DS.NewArena(DS.ArenaConfig{
		ChunkSize: opts.ChunkSize,
		SlabSize:  opts.SlabSize,
		MaxBytes:  opts.MaxBytes,
	})
	return &Registry{
		index:    DS.NewIndex(arena, opts.InitialCapacity, hash),
		validate: opts.ValidateSymbols,
	}, nil
}

var global = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(DefaultOptions())
	util.Assert(err == nil, "default options rejected: %v", err)
	return r
})

// Global returns the process-wide registry, creating it on first use.
func Global() *Registry {
	return global()
}

// Intern returns the symbol for s, placing a copy of s in the registry if its
// content has not been seen. Concurrent calls with equal content all return
// the same symbol.
func (r *Registry) Intern(s string) (Symbol, error) {
	if rec, ok := r.index.Find(s); ok {
		return Symbol{rec}, nil
	}
	rec, _, err := r.index.InsertIfAbsent(s)
	if err != nil {
		return Symbol{}, err
	}
	return Symbol{rec}, nil
}

// InternBytes is Intern for a byte slice. b is only read during the call and
// may be reused afterwards.
func (r *Registry) InternBytes(b []byte) (Symbol, error) {
	// The alias never outlives this call: the arena copies new content.
	return r.Intern(unsafe.String(unsafe.SliceData(b), len(b)))
}

// MustIntern is like Intern but panics if the arena cannot grow.
func (r *Registry) MustIntern(s string) Symbol {
	sym, err := r.Intern(s)
	if err != nil {
		panic(err)
	}
	return sym
}

// InternBulk interns every element of strs and returns the symbols in input
// order. Repeated contents are looked up once, and all new contents are
// placed under a single write-lock acquisition.
//
// On allocation failure no symbols are returned. Contents placed before the
// failure stay interned.
func (r *Registry) InternBulk(strs []string) ([]Symbol, error) {
	out := make([]Symbol, len(strs))
	if len(strs) == 0 {
		return out, nil
	}

	seen := swiss.New[string, int](len(strs))
	pos := util.GetIntSlice(len(strs))
	defer util.PutIntSlice(pos)
	uniq := util.GetStringSlice()
	defer util.PutStringSlice(uniq)

	for i, s := range strs {
		j, ok := seen.Get(s)
		if !ok {
			j = len(*uniq)
			*uniq = append(*uniq, s)
			seen.Put(s, j)
		}
		(*pos)[i] = j
	}

	recs := make([]*DS.Record, len(*uniq))
	inserted, err := r.index.InsertBatch(*uniq, recs)
	log.Debug("bulk intern: %d inputs, %d distinct, %d new", len(strs), len(*uniq), inserted)
	if err != nil {
		return nil, err
	}
	for i := range strs {
		out[i] = Symbol{recs[(*pos)[i]]}
	}
	return out, nil
}

// Get returns the symbol for s if it has already been interned. It never
// allocates.
func (r *Registry) Get(s string) (Symbol, bool) {
	rec, ok := r.index.Find(s)
	if !ok {
		return Symbol{}, false
	}
	return Symbol{rec}, true
}

// Resolve returns the content of sym. Without ValidateSymbols this is
// sym.String(). With it, symbols not owned by this registry, including the
// zero Symbol, yield an SVDB_MISUSE_SYMBOL error.
func (r *Registry) Resolve(sym Symbol) (string, error) {
	if !r.validate {
		return sym.String(), nil
	}
	if sym.rec == nil {
		return "", errors.NewError(SVDB_MISUSE_SYMBOL, "zero symbol")
	}
	if _, ok := r.index.Lookup(sym.rec.Addr()); !ok {
		return "", errors.Errorf(SVDB_MISUSE_SYMBOL, "symbol %#x is not owned by this registry", sym.Addr())
	}
	return sym.rec.String(), nil
}

// Owns reports whether sym was produced by this registry.
func (r *Registry) Owns(sym Symbol) bool {
	if sym.rec == nil {
		return false
	}
	_, ok := r.index.Lookup(sym.rec.Addr())
	return ok
}

// FromAddr converts a value obtained from Symbol.Addr back into a symbol.
// It reports false unless addr is the address of a symbol of this registry.
func (r *Registry) FromAddr(addr uint64) (Symbol, bool) {
	if addr == 0 || uint64(uintptr(addr)) != addr {
		return Symbol{}, false
	}
	rec, ok := r.index.Lookup(uintptr(addr))
	if !ok {
		return Symbol{}, false
	}
	return Symbol{rec}, true
}

// ResolveAddr is like FromAddr but returns an SVDB_MISUSE_ADDR error for
// unknown addresses.
func (r *Registry) ResolveAddr(addr uint64) (Symbol, error) {
	sym, ok := r.FromAddr(addr)
	if !ok {
		return Symbol{}, errors.Errorf(SVDB_MISUSE_ADDR, "address %#x is not a symbol of this registry", addr)
	}
	return sym, nil
}

// Len returns the number of distinct symbols.
func (r *Registry) Len() int {
	return r.index.Len()
}

// Stats returns a snapshot of sizes and counters.
func (r *Registry) Stats() Stats {
	return DS.CollectMetrics(r.index)
}

// New interns s in the global registry. It panics if the arena cannot grow,
// which the unbounded global registry only does when the runtime refuses
// memory.
func New(s string) Symbol {
	return Global().MustIntern(s)
}

// Lookup returns the symbol for s from the global registry if s has been
// interned.
func Lookup(s string) (Symbol, bool) {
	return Global().Get(s)
}

// Bulk interns strs in the global registry, returning symbols in input order.
// It panics if the arena cannot grow.
func Bulk(strs []string) []Symbol {
	syms, err := Global().InternBulk(strs)
	if err != nil {
		panic(err)
	}
	return syms
}
