package util

import "sync"

// scratchCap is the capacity of freshly pooled scratch slices. Larger batches
// grow the slice; slices beyond maxPooledCap are dropped instead of pooled.
const (
	scratchCap   = 256
	maxPooledCap = 1 << 16
)

// IntSlicePool is a pool of reusable []int slices for batch position maps.
var IntSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]int, 0, scratchCap)
		return &s
	},
}

// GetIntSlice retrieves an []int slice of length n from the pool.
func GetIntSlice(n int) *[]int {
	sp := IntSlicePool.Get().(*[]int)
	if cap(*sp) < n {
		*sp = make([]int, n)
	} else {
		*sp = (*sp)[:n]
	}
	return sp
}

// PutIntSlice returns an []int slice to the pool.
func PutIntSlice(s *[]int) {
	if s != nil && cap(*s) <= maxPooledCap {
		*s = (*s)[:0]
		IntSlicePool.Put(s)
	}
}

// StringSlicePool is a pool of reusable []string slices for deduplicated
// batch contents.
var StringSlicePool = sync.Pool{
	New: func() interface{} {
		s := make([]string, 0, scratchCap)
		return &s
	},
}

// GetStringSlice retrieves an empty []string slice from the pool.
func GetStringSlice() *[]string {
	sp := StringSlicePool.Get().(*[]string)
	*sp = (*sp)[:0] // reset length, keep capacity
	return sp
}

// PutStringSlice returns a []string slice to the pool. Elements are cleared so
// pooled slices do not pin caller strings.
func PutStringSlice(s *[]string) {
	if s == nil || cap(*s) > maxPooledCap {
		return
	}
	clear((*s)[:cap(*s)])
	*s = (*s)[:0]
	StringSlicePool.Put(s)
}
