package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIntSlice_Length(t *testing.T) {
	sp := GetIntSlice(10)
	assert.Len(t, *sp, 10)
	PutIntSlice(sp)

	big := GetIntSlice(scratchCap * 4)
	assert.Len(t, *big, scratchCap*4)
	PutIntSlice(big)
}

func TestGetStringSlice_Empty(t *testing.T) {
	sp := GetStringSlice()
	*sp = append(*sp, "a", "b")
	PutStringSlice(sp)

	again := GetStringSlice()
	assert.Empty(t, *again)
	PutStringSlice(again)
}

func TestPutStringSlice_ClearsElements(t *testing.T) {
	sp := GetStringSlice()
	*sp = append(*sp, "pinned")
	PutStringSlice(sp)
	assert.Equal(t, "", (*sp)[:1][0])
}

func TestPut_NilAndOversized(t *testing.T) {
	assert.NotPanics(t, func() {
		PutIntSlice(nil)
		PutStringSlice(nil)
		huge := make([]int, 0, maxPooledCap+1)
		PutIntSlice(&huge)
	})
}
