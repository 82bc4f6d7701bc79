package DS

import (
	"sync/atomic"
)

// ---- AtomicCounter ----------------------------------------------------

// AtomicCounter is a thread-safe int64 counter backed by atomic operations.
type AtomicCounter struct {
	val int64
}

// Add atomically adds n to the counter and returns the new value.
func (ac *AtomicCounter) Add(n int64) int64 {
	return atomic.AddInt64(&ac.val, n)
}

// Get atomically reads the current counter value.
func (ac *AtomicCounter) Get() int64 {
	return atomic.LoadInt64(&ac.val)
}

// ---- LockMetrics ------------------------------------------------------

// LockMetrics tracks write-lock acquisition and contention statistics.
type LockMetrics struct {
	Acquisitions AtomicCounter
	Contentions  AtomicCounter
	WaitNs       AtomicCounter
}

// RecordAcquisition increments the acquisition counter.
func (lm *LockMetrics) RecordAcquisition() {
	lm.Acquisitions.Add(1)
}

// RecordContention increments the contention counter and accumulates wait time.
func (lm *LockMetrics) RecordContention(waitNs int64) {
	lm.Contentions.Add(1)
	lm.WaitNs.Add(waitNs)
}

// ---- IndexCounters ----------------------------------------------------

// IndexCounters counts lookup outcomes on an Index.
type IndexCounters struct {
	Hits       AtomicCounter
	Misses     AtomicCounter
	Inserts    AtomicCounter
	Batches    AtomicCounter
	BatchItems AtomicCounter
}

// ---- Stats ------------------------------------------------------------

// Stats is a point-in-time snapshot of an Index and its Arena.
type Stats struct {
	// Symbols is the number of distinct contents interned.
	Symbols int `yaml:"symbols"`
	// Chunks and Slabs count arena buffers.
	Chunks int `yaml:"chunks"`
	Slabs  int `yaml:"slabs"`
	// BytesUsed is the content bytes stored; BytesReserved is the total
	// reserved for chunks and slabs.
	BytesUsed     int64 `yaml:"bytes_used"`
	BytesReserved int64 `yaml:"bytes_reserved"`
	// Hits and Misses count read-locked probes.
	Hits   int64 `yaml:"hits"`
	Misses int64 `yaml:"misses"`
	// Inserts counts records placed.
	Inserts int64 `yaml:"inserts"`
	// Batches and BatchItems count InsertBatch calls and their sizes.
	Batches    int64 `yaml:"batches"`
	BatchItems int64 `yaml:"batch_items"`
	// LockAcquisitions, LockContentions and LockWaitNs describe the write lock.
	LockAcquisitions int64 `yaml:"lock_acquisitions"`
	LockContentions  int64 `yaml:"lock_contentions"`
	LockWaitNs       int64 `yaml:"lock_wait_ns"`
}

// CollectMetrics builds a Stats snapshot. Arena figures are read under the
// index read lock so they are consistent with Symbols.
func CollectMetrics(ix *Index) Stats {
	if ix == nil {
		return Stats{}
	}

	ix.mu.RLock()
	s := Stats{
		Symbols:       ix.count,
		Chunks:        ix.arena.NumChunks(),
		Slabs:         ix.arena.NumSlabs(),
		BytesUsed:     ix.arena.BytesUsed(),
		BytesReserved: ix.arena.BytesReserved(),
	}
	ix.mu.RUnlock()

	s.Hits = ix.counters.Hits.Get()
	s.Misses = ix.counters.Misses.Get()
	s.Inserts = ix.counters.Inserts.Get()
	s.Batches = ix.counters.Batches.Get()
	s.BatchItems = ix.counters.BatchItems.Get()
	s.LockAcquisitions = ix.lockMetrics.Acquisitions.Get()
	s.LockContentions = ix.lockMetrics.Contentions.Get()
	s.LockWaitNs = ix.lockMetrics.WaitNs.Get()
	return s
}
