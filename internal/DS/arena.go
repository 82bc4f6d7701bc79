package DS

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/tidwall/btree"

	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/internal/SF/util"
	"github.com/sqlvibe/symvibe/internal/log"
)

const (
	// arenaChunkSize is the default size for new byte chunks.
	arenaChunkSize = 256 * 1024 // 256 KB default chunk
	// recordSlabSize is the default number of records per slab.
	recordSlabSize = 1024

	// MinChunkSize and MinSlabSize bound configuration from below.
	MinChunkSize = 64
	MinSlabSize  = 16
)

// ArenaConfig sizes an Arena. Zero values select the defaults.
type ArenaConfig struct {
	// ChunkSize is the size of each byte chunk. Contents larger than a chunk
	// get a chunk of their own.
	ChunkSize int
	// SlabSize is the number of records per slab.
	SlabSize int
	// MaxBytes caps the bytes the arena may reserve for chunks and slabs.
	// 0 means unlimited.
	MaxBytes int64
}

// Arena is an append-only allocator for canonical string records. Content
// bytes are packed into large chunks and record headers into fixed-capacity
// slabs. Neither is ever grown in place, compacted or freed, so every address
// the arena hands out stays valid for the arena's lifetime.
//
// Arena is not safe for concurrent mutation; Index serializes Alloc under its
// write lock. Reading a placed record needs no synchronization.
type Arena struct {
	chunkSize int
	slabSize  int
	maxBytes  int64

	chunks  [][]byte
	current []byte
	offset  int

	slabs     [][]Record
	slab      []Record                // tail slab, shares backing with slabs[len(slabs)-1]
	slabIndex *btree.Map[uint64, int] // slab base address -> position in slabs

	used      int64 // content bytes copied in
	reserved  int64 // bytes reserved for chunks and slabs
	numAllocs int
}

// NewArena creates an empty Arena. Nothing is reserved until the first Alloc.
func NewArena(cfg ArenaConfig) *Arena {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = arenaChunkSize
	}
	if cfg.SlabSize <= 0 {
		cfg.SlabSize = recordSlabSize
	}
	return &Arena{
		slabIndex: btree.NewMap[uint64, int](0),
		chunkSize: cfg.ChunkSize,
		slabSize:  cfg.SlabSize,
		maxBytes:  cfg.MaxBytes,
	}
}

// Alloc copies content into arena-owned storage and places a record for it.
// On error nothing is placed and the arena is unchanged.
func (a *Arena) Alloc(content string, hash uint64) (*Record, error) {
	n := len(content)
	// Content larger than a chunk gets a dedicated chunk; the current chunk
	// keeps taking small contents.
	dedicated := n > a.chunkSize
	needChunk := dedicated || (n > 0 && a.offset+n > len(a.current))
	needSlab := len(a.slab) == cap(a.slab)

	chunkLen := 0
	var need int64
	if needChunk {
		chunkLen = a.chunkSize
		if dedicated {
			chunkLen = n
		}
		need += int64(chunkLen)
	}
	if needSlab {
		need += int64(a.slabSize) * int64(recordSize)
	}
	if a.maxBytes > 0 && a.reserved+need > a.maxBytes {
		log.Warn("arena budget exhausted: reserved=%d need=%d max=%d", a.reserved, need, a.maxBytes)
		return nil, errors.Errorf(errors.SVDB_NOMEM_ARENA,
			"arena budget of %d bytes exhausted (reserved %d, need %d)", a.maxBytes, a.reserved, need)
	}

	chunk, slab, err := a.reserve(chunkLen, needSlab)
	if err != nil {
		log.Warn("arena reservation failed: %v", err)
		return nil, err
	}

	if needChunk {
		a.chunks = append(a.chunks, chunk)
		a.reserved += int64(chunkLen)
		if !dedicated {
			a.current = chunk
			a.offset = 0
		}
		log.Debug("arena: chunk %d reserved (%d bytes, dedicated=%v)", len(a.chunks), chunkLen, dedicated)
	}
	if needSlab {
		a.addSlab(slab)
		a.reserved += int64(a.slabSize) * int64(recordSize)
		log.Debug("arena: slab %d reserved (%d records)", len(a.slabs), a.slabSize)
	}

	var str string
	if n > 0 {
		var dst []byte
		if dedicated {
			dst = chunk[:n:n]
		} else {
			util.Assert(a.offset+n <= len(a.current), "content of %d bytes overruns chunk at offset %d", n, a.offset)
			dst = a.current[a.offset : a.offset+n : a.offset+n]
			a.offset += n
		}
		copy(dst, content)
		str = unsafe.String(&dst[0], n)
		a.used += int64(n)
	}

	i := len(a.slab)
	util.Assert(i < cap(a.slab), "slab overflow at %d", i)
	a.slab = a.slab[:i+1]
	rec := &a.slab[i]
	rec.str = str
	rec.hash = hash
	a.slabs[len(a.slabs)-1] = a.slab
	a.numAllocs++
	return rec, nil
}

// reserve allocates the buffers Alloc needs before any state changes. The
// runtime refuses impossible sizes with a recoverable panic; that is reported
// as SVDB_NOMEM_CHUNK.
func (a *Arena) reserve(chunkLen int, needSlab bool) (chunk []byte, slab []Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			chunk, slab = nil, nil
			err = errors.Wrap(errors.SVDB_NOMEM_CHUNK, rerr,
				fmt.Sprintf("arena cannot reserve a %d byte chunk", chunkLen))
		}
	}()
	if chunkLen > 0 {
		chunk = make([]byte, chunkLen)
	}
	if needSlab {
		slab = make([]Record, 0, a.slabSize)
	}
	return chunk, slab, nil
}

// addSlab makes slab the tail slab and indexes it by base address.
func (a *Arena) addSlab(slab []Record) {
	base := uintptr(unsafe.Pointer(unsafe.SliceData(slab)))
	a.slabIndex.Set(uint64(base), len(a.slabs))
	a.slabs = append(a.slabs, slab)
	a.slab = slab
}

// Owns maps addr to the record placed at exactly that address. Addresses
// inside a record, past the filled part of a slab or outside every slab are
// rejected. The candidate slab is the one with the greatest base <= addr.
func (a *Arena) Owns(addr uintptr) (*Record, bool) {
	var base uint64
	idx := -1
	a.slabIndex.Descend(uint64(addr), func(b uint64, i int) bool {
		base, idx = b, i
		return false
	})
	if idx < 0 {
		return nil, false
	}
	s := a.slabs[idx]
	off := addr - uintptr(base)
	if off >= uintptr(len(s))*recordSize || off%recordSize != 0 {
		return nil, false
	}
	return &s[off/recordSize], true
}

// BytesUsed returns the content bytes copied into the arena.
func (a *Arena) BytesUsed() int64 { return a.used }

// BytesReserved returns the bytes reserved for chunks and slabs.
func (a *Arena) BytesReserved() int64 { return a.reserved }

// NumChunks returns the number of byte chunks.
func (a *Arena) NumChunks() int { return len(a.chunks) }

// NumSlabs returns the number of record slabs.
func (a *Arena) NumSlabs() int { return len(a.slabs) }

// NumAllocs returns the number of records placed.
func (a *Arena) NumAllocs() int { return a.numAllocs }
