package DS

import (
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlvibe/symvibe/internal/SF/errors"
)

func TestArena_AllocCopiesContent(t *testing.T) {
	a := NewArena(ArenaConfig{})
	src := []byte("identifier")
	rec, err := a.Alloc(string(src), 42)
	require.NoError(t, err)

	src[0] = 'X'
	assert.Equal(t, "identifier", rec.String())
	assert.Equal(t, uint64(42), rec.Hash())
	assert.Equal(t, int64(len("identifier")), a.BytesUsed())
	assert.Equal(t, 1, a.NumAllocs())
}

func TestArena_EmptyContent(t *testing.T) {
	a := NewArena(ArenaConfig{})
	r1, err := a.Alloc("", 0)
	require.NoError(t, err)
	assert.Equal(t, "", r1.String())
	assert.Equal(t, 0, a.NumChunks(), "empty content needs no chunk bytes")
	assert.Equal(t, 1, a.NumSlabs())
}

func TestArena_ChunkGrowthKeepsAddresses(t *testing.T) {
	a := NewArena(ArenaConfig{ChunkSize: MinChunkSize, SlabSize: MinSlabSize})

	var recs []*Record
	var want []string
	for i := 0; i < 500; i++ {
		s := strings.Repeat(string(rune('a'+i%26)), 1+i%40)
		r, err := a.Alloc(s, uint64(i))
		require.NoError(t, err)
		recs = append(recs, r)
		want = append(want, s)
	}

	assert.Greater(t, a.NumChunks(), 1)
	assert.Greater(t, a.NumSlabs(), 1)
	for i, r := range recs {
		assert.Equal(t, want[i], r.String(), "record %d moved or changed", i)
		owned, ok := a.Owns(r.Addr())
		require.True(t, ok, "record %d not owned", i)
		assert.Same(t, r, owned)
	}
}

func TestArena_OversizedContentGetsOwnChunk(t *testing.T) {
	a := NewArena(ArenaConfig{ChunkSize: MinChunkSize})
	big := strings.Repeat("x", MinChunkSize*3)
	r, err := a.Alloc(big, 1)
	require.NoError(t, err)
	assert.Equal(t, big, r.String())
	assert.Equal(t, 1, a.NumChunks())
}

func TestArena_OversizedContentKeepsCurrentChunk(t *testing.T) {
	a := NewArena(ArenaConfig{ChunkSize: MinChunkSize})

	small1, err := a.Alloc("a", 1)
	require.NoError(t, err)
	big := strings.Repeat("x", MinChunkSize+1)
	bigRec, err := a.Alloc(big, 2)
	require.NoError(t, err)
	small2, err := a.Alloc("b", 3)
	require.NoError(t, err)

	assert.Equal(t, 2, a.NumChunks())
	assert.Equal(t, big, bigRec.String())
	assert.Equal(t, "b", small2.String())
	// "b" is packed right after "a" in the first chunk.
	assert.Equal(t, unsafe.Add(unsafe.Pointer(unsafe.StringData(small1.String())), 1),
		unsafe.Pointer(unsafe.StringData(small2.String())))
	slabBytes := int64(recordSlabSize) * int64(recordSize)
	assert.Equal(t, int64(MinChunkSize)+int64(len(big))+slabBytes, a.BytesReserved())
}

func TestArena_OversizedContentDoesNotExhaustBudget(t *testing.T) {
	slabBytes := int64(MinSlabSize) * int64(recordSize)
	oversized := 3 * MinChunkSize
	a := NewArena(ArenaConfig{
		ChunkSize: MinChunkSize,
		SlabSize:  MinSlabSize,
		MaxBytes:  slabBytes + MinChunkSize + int64(oversized),
	})

	for i, s := range []string{"a", strings.Repeat("o", oversized), "b", "c", strings.Repeat("d", MinChunkSize-3)} {
		rec, err := a.Alloc(s, uint64(i))
		require.NoError(t, err, "alloc %d", i)
		assert.Equal(t, s, rec.String())
	}
	assert.Equal(t, 2, a.NumChunks())

	_, err := a.Alloc("e", 9)
	assert.True(t, errors.IsErrorCode(err, errors.SVDB_NOMEM_ARENA), "first chunk is full now")
}

func TestArena_BudgetExhausted(t *testing.T) {
	slabBytes := int64(MinSlabSize) * int64(recordSize)
	a := NewArena(ArenaConfig{ChunkSize: MinChunkSize, SlabSize: MinSlabSize, MaxBytes: slabBytes + MinChunkSize})

	_, err := a.Alloc(strings.Repeat("a", MinChunkSize), 1)
	require.NoError(t, err)
	reserved := a.BytesReserved()
	allocs := a.NumAllocs()

	_, err = a.Alloc("b", 2)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.SVDB_NOMEM_ARENA))
	assert.True(t, errors.IsErrorCode(err, errors.SVDB_NOMEM))
	assert.Equal(t, reserved, a.BytesReserved(), "failed alloc must not reserve")
	assert.Equal(t, allocs, a.NumAllocs(), "failed alloc must not place")
	assert.Equal(t, 1, a.NumChunks())
}

func TestArena_ImpossibleChunkIsReported(t *testing.T) {
	a := NewArena(ArenaConfig{ChunkSize: math.MaxInt})
	_, err := a.Alloc("x", 1)
	require.Error(t, err)
	assert.Equal(t, errors.SVDB_NOMEM_CHUNK, errors.ErrorCodeOf(err))
	assert.Equal(t, 0, a.NumChunks())
	assert.Equal(t, 0, a.NumSlabs())
	assert.Zero(t, a.BytesReserved())
}

func TestArena_OwnsRejectsForeignAndInterior(t *testing.T) {
	a := NewArena(ArenaConfig{})
	r, err := a.Alloc("owned", 7)
	require.NoError(t, err)

	_, ok := a.Owns(r.Addr() + 1)
	assert.False(t, ok, "interior address")

	foreign := &Record{str: "owned"}
	_, ok = a.Owns(foreign.Addr())
	assert.False(t, ok, "heap record outside every slab")

	_, ok = a.Owns(r.Addr() + recordSize)
	assert.False(t, ok, "slot past the filled part of the slab")

	_, ok = a.Owns(0)
	assert.False(t, ok)
}

func TestArena_OwnsAcrossManySlabs(t *testing.T) {
	a := NewArena(ArenaConfig{SlabSize: MinSlabSize})

	recs := make([]*Record, 0, 100*MinSlabSize)
	for i := 0; i < cap(recs)-3; i++ {
		r, err := a.Alloc("", uint64(i))
		require.NoError(t, err)
		recs = append(recs, r)
	}
	require.Equal(t, 100, a.NumSlabs())

	for i, r := range recs {
		got, ok := a.Owns(r.Addr())
		require.True(t, ok, "record %d", i)
		require.Same(t, r, got)
		_, ok = a.Owns(r.Addr() + recordSize/2)
		require.False(t, ok, "interior of record %d", i)
	}

	// The tail slab has three unfilled slots.
	last := recs[len(recs)-1]
	_, ok := a.Owns(last.Addr() + recordSize)
	assert.False(t, ok)
	_, ok = a.Owns(^uintptr(0))
	assert.False(t, ok)
}

func BenchmarkArena_Owns(b *testing.B) {
	a := NewArena(ArenaConfig{SlabSize: MinSlabSize})
	var first *Record
	for i := 0; i < 1024*MinSlabSize; i++ {
		r, _ := a.Alloc("", uint64(i))
		if first == nil {
			first = r
		}
	}
	addr := first.Addr()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Owns(addr)
	}
}

func BenchmarkArena_Alloc(b *testing.B) {
	a := NewArena(ArenaConfig{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = a.Alloc("benchmark-identifier", uint64(i))
	}
}
