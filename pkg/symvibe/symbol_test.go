package symvibe

import (
	"encoding/json"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSymbol_Zero(t *testing.T) {
	var s Symbol
	assert.True(t, s.IsZero())
	assert.Equal(t, "", s.String())
	assert.Zero(t, s.Addr())
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Is(""), "the zero symbol has no content")
	assert.Equal(t, "symvibe.Symbol{}", s.GoString())
}

func TestSymbol_EmptyStringIsDistinct(t *testing.T) {
	r := newTestRegistry(t, Options{})
	empty := r.MustIntern("")
	assert.False(t, empty.IsZero())
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.Is(""))
	assert.Equal(t, empty, r.MustIntern(""))
	assert.NotEqual(t, empty, r.MustIntern(" "))
}

func TestSymbol_Accessors(t *testing.T) {
	r := newTestRegistry(t, Options{})
	s := r.MustIntern("hello")
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, 5, s.Len())
	assert.False(t, s.IsEmpty())
	assert.True(t, s.Is("hello"))
	assert.False(t, s.Is("hell"))
	assert.Equal(t, `symvibe.Symbol("hello")`, s.GoString())
	assert.Equal(t, "hello", fmt.Sprintf("%s", s))
	assert.Equal(t, `"hello"`, fmt.Sprintf("%q", s))
}

func TestSymbol_CompareByAddress(t *testing.T) {
	r := newTestRegistry(t, Options{})
	syms := []Symbol{r.MustIntern("zeta"), r.MustIntern("alpha"), r.MustIntern("mu")}

	for _, s := range syms {
		assert.Zero(t, s.Compare(s))
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Compare(syms[j]) < 0 })
	for i := 1; i < len(syms); i++ {
		assert.Less(t, syms[i-1].Addr(), syms[i].Addr())
		assert.Equal(t, -1, syms[i-1].Compare(syms[i]))
		assert.Equal(t, 1, syms[i].Compare(syms[i-1]))
	}
}

func TestSymbol_MapKey(t *testing.T) {
	r := newTestRegistry(t, Options{})
	m := map[Symbol]int{}
	m[r.MustIntern("k")] = 1
	m[r.MustIntern("k")] = 2
	m[r.MustIntern(string([]byte{'k'}))] = 3
	require.Len(t, m, 1)
	assert.Equal(t, 3, m[r.MustIntern("k")])
}

type taggedRecord struct {
	Kind Symbol   `json:"kind" yaml:"kind"`
	Tags []Symbol `json:"tags" yaml:"tags"`
}

func TestSymbol_JSONRoundTrip(t *testing.T) {
	in := taggedRecord{Kind: New("metric"), Tags: Bulk([]string{"env", "region", "env"})}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"metric","tags":["env","region","env"]}`, string(data))

	var out taggedRecord
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out, "decoding re-interns into the global registry")
	assert.Equal(t, out.Tags[0], out.Tags[2])
}

func TestSymbol_YAMLRoundTrip(t *testing.T) {
	in := taggedRecord{Kind: New("span"), Tags: Bulk([]string{"service", "host"})}

	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "kind: span\ntags:\n    - service\n    - host\n", string(data))

	var out taggedRecord
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
