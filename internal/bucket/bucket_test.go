package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexInsertLookup(t *testing.T) {
	x := New()

	x.Insert("a", 0)
	x.Insert("b", 1)
	x.Insert("a", 2)
	x.Insert("a", 5)

	assert.Equal(t, []uint32{0, 2, 5}, x.Lookup("a"), "lookup preserves insertion order")
	assert.Equal(t, []uint32{1}, x.Lookup("b"))
	assert.Equal(t, 2, x.Len())
}

func TestIndexLookupMiss(t *testing.T) {
	x := New()
	x.Insert("a", 0)

	assert.Empty(t, x.Lookup("never-seen"), "a miss is empty, not an error")
	assert.Nil(t, x.LookupBitmap("never-seen"))
}

func TestIndexLookupBitmap(t *testing.T) {
	x := New()
	x.Insert("a", 3)
	x.Insert("a", 9)

	b := x.LookupBitmap("a")
	require.NotNil(t, b)
	assert.Equal(t, uint64(2), b.GetCardinality())
	assert.True(t, b.Contains(9))
}

func TestIndexStats(t *testing.T) {
	x := New()

	assert.Equal(t, Stats{}, x.Stats())

	x.Insert("a", 0)
	x.Insert("a", 1)
	x.Insert("a", 2)
	x.Insert("b", 3)

	s := x.Stats()
	assert.Equal(t, 2, s.Buckets)
	assert.Equal(t, uint64(3), s.LargestBucket)
}
