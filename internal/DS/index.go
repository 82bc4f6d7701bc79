package DS

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/hashmap"
)

// HashFunc hashes string content. It must be deterministic within a process.
type HashFunc func(string) uint64

// Index maps string content to its canonical Record. It owns the Arena and is
// the only synchronized structure: probes share the read lock, placement of
// new records takes the write lock. Records found through the index can be
// read without any lock.
//
// Entries are keyed by content hash; records with equal hashes form a chain
// and are told apart by full content comparison.
type Index struct {
	mu    sync.RWMutex
	table *hashmap.Map[uint64, *Record]
	arena *Arena
	hash  HashFunc
	count int

	counters    IndexCounters
	lockMetrics LockMetrics
}

// NewIndex creates an Index over arena. capacity pre-sizes the hash table; a
// nil hash selects xxhash.
func NewIndex(arena *Arena, capacity int, hash HashFunc) *Index {
	if hash == nil {
		hash = xxhash.Sum64String
	}
	return &Index{
		table: hashmap.New[uint64, *Record](capacity),
		arena: arena,
		hash:  hash,
	}
}

// Hash returns the content hash the index uses for s.
func (ix *Index) Hash(s string) uint64 {
	return ix.hash(s)
}

// probe walks the chain for h. Caller holds mu (read or write).
func (ix *Index) probe(h uint64, s string) *Record {
	r, _ := ix.table.Get(h)
	for ; r != nil; r = r.next {
		if r.str == s {
			return r
		}
	}
	return nil
}

// lock takes the write lock, recording contention when it is not
// immediately available.
func (ix *Index) lock() {
	if ix.mu.TryLock() {
		ix.lockMetrics.RecordAcquisition()
		return
	}
	start := time.Now()
	ix.mu.Lock()
	ix.lockMetrics.RecordAcquisition()
	ix.lockMetrics.RecordContention(time.Since(start).Nanoseconds())
}

// insertLocked places s in the arena and links it into the table. Caller
// holds the write lock and has checked that s is absent.
func (ix *Index) insertLocked(h uint64, s string) (*Record, error) {
	r, err := ix.arena.Alloc(s, h)
	if err != nil {
		return nil, err
	}
	head, _ := ix.table.Get(h)
	r.next = head
	ix.table.Set(h, r)
	ix.count++
	ix.counters.Inserts.Add(1)
	return r, nil
}

// Find returns the record for s if it has been placed.
func (ix *Index) Find(s string) (*Record, bool) {
	h := ix.hash(s)
	ix.mu.RLock()
	r := ix.probe(h, s)
	ix.mu.RUnlock()
	if r == nil {
		ix.counters.Misses.Add(1)
		return nil, false
	}
	ix.counters.Hits.Add(1)
	return r, true
}

// InsertIfAbsent returns the record for s, placing it if no record exists.
// inserted reports whether this call placed it; false means it was already
// present, possibly placed by a concurrent caller after a failed Find.
func (ix *Index) InsertIfAbsent(s string) (rec *Record, inserted bool, err error) {
	h := ix.hash(s)
	ix.lock()
	defer ix.mu.Unlock()

	if r := ix.probe(h, s); r != nil {
		return r, false, nil
	}
	r, err := ix.insertLocked(h, s)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// InsertBatch resolves every element of contents into out, placing missing
// contents. Known contents are resolved under one read-locked pass; the
// misses are placed under a single write-locked pass. out must be at least as
// long as contents.
//
// On an allocation error the write pass stops: records placed before the
// error are published and remain valid, entries of out for unresolved
// contents are nil.
func (ix *Index) InsertBatch(contents []string, out []*Record) (inserted int, err error) {
	if len(contents) == 0 {
		return 0, nil
	}
	out = out[:len(contents)]
	ix.counters.Batches.Add(1)
	ix.counters.BatchItems.Add(int64(len(contents)))

	hashes := make([]uint64, len(contents))
	for i, s := range contents {
		hashes[i] = ix.hash(s)
	}

	misses := 0
	ix.mu.RLock()
	for i, s := range contents {
		out[i] = ix.probe(hashes[i], s)
		if out[i] == nil {
			misses++
		}
	}
	ix.mu.RUnlock()
	ix.counters.Hits.Add(int64(len(contents) - misses))
	ix.counters.Misses.Add(int64(misses))
	if misses == 0 {
		return 0, nil
	}

	ix.lock()
	defer ix.mu.Unlock()
	for i, s := range contents {
		if out[i] != nil {
			continue
		}
		if r := ix.probe(hashes[i], s); r != nil {
			out[i] = r
			continue
		}
		r, err := ix.insertLocked(hashes[i], s)
		if err != nil {
			return inserted, err
		}
		out[i] = r
		inserted++
	}
	return inserted, nil
}

// Lookup returns the record placed at addr, if any.
func (ix *Index) Lookup(addr uintptr) (*Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.arena.Owns(addr)
}

// Len returns the number of records placed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.count
}
