package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lshgo/resource"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()

	s, err := New(cfg)
	require.NoError(t, err)

	return s
}

func TestStoreAppendGet(t *testing.T) {
	s := newTestStore(t, Config{Dim: 3, InitialCapacity: 4, GrowRatio: 2})

	entries := []Entry{
		{Text: []byte("first"), Embedding: []float32{1, 2, 3}},
		{Text: []byte("second"), Embedding: []float32{4, 5, 6}},
		{Text: []byte("third"), Embedding: []float32{7, 8, 9}},
	}

	for i, e := range entries {
		handle, err := s.Append(e.Text, e.Embedding)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), handle, "handles must be sequential from 0")
	}

	require.Equal(t, 3, s.Len())

	for i, want := range entries {
		got, err := s.Get(uint32(i))
		require.NoError(t, err)
		assert.Equal(t, want.Text, got.Text)
		assert.Equal(t, want.Embedding, got.Embedding)
	}
}

func TestStoreCopiesBuffers(t *testing.T) {
	s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2})

	text := []byte("payload")
	embedding := []float32{1, 2}

	handle, err := s.Append(text, embedding)
	require.NoError(t, err)

	text[0] = 'X'
	embedding[0] = 99

	got, err := s.Get(handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got.Text)
	assert.Equal(t, []float32{1, 2}, got.Embedding)
}

func TestStoreWrongDimension(t *testing.T) {
	s := newTestStore(t, Config{Dim: 4, InitialCapacity: 2, GrowRatio: 2})

	_, err := s.Append([]byte("x"), []float32{1, 2})
	assert.ErrorIs(t, err, ErrWrongDimension)
	assert.Equal(t, 0, s.Len())
}

func TestStoreHandleNotFound(t *testing.T) {
	s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2})

	_, err := s.Get(0)
	assert.ErrorIs(t, err, ErrHandleNotFound)

	_, err = s.Embedding(7)
	assert.ErrorIs(t, err, ErrHandleNotFound)
}

func TestStoreGrowth(t *testing.T) {
	s := newTestStore(t, Config{Dim: 2, InitialCapacity: 1, GrowRatio: 2})
	require.Equal(t, 1, s.Cap())

	_, err := s.Append([]byte("a"), []float32{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cap(), "first append fits the initial capacity")

	_, err = s.Append([]byte("b"), []float32{2, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Cap(), "second append grows 1 -> 2")

	_, err = s.Append([]byte("c"), []float32{3, 3})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Cap(), "third append grows 2 -> 4")
	assert.Equal(t, 3, s.Len())

	// Growth must preserve every previously stored entry.
	for i, want := range [][]float32{{1, 1}, {2, 2}, {3, 3}} {
		got, err := s.Get(uint32(i))
		require.NoError(t, err)
		assert.Equal(t, want, got.Embedding)
		assert.Equal(t, []byte{byte('a' + i)}, got.Text)
	}

	assert.LessOrEqual(t, s.Len(), s.Cap())
}

func TestStoreGrowthRounding(t *testing.T) {
	s := newTestStore(t, Config{Dim: 1, InitialCapacity: 2, GrowRatio: 1.5})

	for i := 0; i < 3; i++ {
		_, err := s.Append(nil, []float32{float32(i)})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, s.Cap(), "capacity 2 scaled by 1.5 rounds up to 3")
}

func TestStorePersistentGrowth(t *testing.T) {
	s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2, Persistent: true})

	_, err := s.Append([]byte("a"), []float32{1, 1})
	require.NoError(t, err)
	_, err = s.Append([]byte("b"), []float32{2, 2})
	require.NoError(t, err)

	_, err = s.Append([]byte("c"), []float32{3, 3})
	require.ErrorIs(t, err, ErrStorageExhausted)

	assert.Equal(t, 2, s.Len(), "failed growth must not change size")
	assert.Equal(t, 2, s.Cap(), "failed growth must not change capacity")

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got.Text)
}

func TestStoreMemoryBudget(t *testing.T) {
	t.Run("Initial allocation denied", func(t *testing.T) {
		c := resource.NewController(resource.Config{MemoryLimitBytes: 8})

		_, err := New(Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2, Controller: c})
		assert.ErrorIs(t, err, ErrStorageExhausted)
	})

	t.Run("Growth denied", func(t *testing.T) {
		c := resource.NewController(resource.Config{MemoryLimitBytes: 16})
		s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2, Controller: c})

		_, err := s.Append(nil, []float32{1, 1})
		require.NoError(t, err)
		_, err = s.Append(nil, []float32{2, 2})
		require.NoError(t, err)

		_, err = s.Append(nil, []float32{3, 3})
		require.ErrorIs(t, err, ErrStorageExhausted)
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, 2, s.Cap())
	})

	t.Run("Payload denied", func(t *testing.T) {
		c := resource.NewController(resource.Config{MemoryLimitBytes: 16})
		s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2, Controller: c})

		_, err := s.Append([]byte("hello"), []float32{1, 1})
		require.ErrorIs(t, err, ErrStorageExhausted)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("Close releases reservation", func(t *testing.T) {
		c := resource.NewController(resource.Config{MemoryLimitBytes: 64})
		s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2, Controller: c})

		_, err := s.Append([]byte("hi"), []float32{1, 1})
		require.NoError(t, err)
		assert.Positive(t, c.MemoryUsage())

		require.NoError(t, s.Close())
		assert.Equal(t, int64(0), c.MemoryUsage())
	})
}

func TestStoreCompression(t *testing.T) {
	long := []byte(fmt.Sprintf("%0512d", 7)) // highly compressible

	for _, ct := range []CompressionType{CompressionLZ4, CompressionZSTD} {
		t.Run(ct.String(), func(t *testing.T) {
			s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2, Compression: ct})

			handle, err := s.Append(long, []float32{1, 2})
			require.NoError(t, err)

			got, err := s.Get(handle)
			require.NoError(t, err)
			assert.Equal(t, long, got.Text)
			assert.Equal(t, []float32{1, 2}, got.Embedding)

			assert.Less(t, s.MemoryBytes(), int64(len(long))+embeddingBytes(2, 2),
				"compressible payload must shrink at rest")
		})
	}
}

func TestStoreClose(t *testing.T) {
	s := newTestStore(t, Config{Dim: 2, InitialCapacity: 2, GrowRatio: 2})

	_, err := s.Append([]byte("a"), []float32{1, 1})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close must be idempotent")

	_, err = s.Append([]byte("b"), []float32{2, 2})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = s.Get(0)
	assert.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, int64(0), s.MemoryBytes())
}

func TestStoreNormalization(t *testing.T) {
	s := newTestStore(t, Config{})

	assert.Equal(t, 1, s.Dim())
	assert.Equal(t, 1, s.Cap())

	_, err := s.Append(nil, []float32{1})
	require.NoError(t, err)
	_, err = s.Append(nil, []float32{2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Cap(), "normalized grow ratio must double")
}

func TestStoreEmbedding(t *testing.T) {
	s := newTestStore(t, Config{Dim: 3, InitialCapacity: 2, GrowRatio: 2})

	handle, err := s.Append([]byte("x"), []float32{1, 2, 3})
	require.NoError(t, err)

	got, err := s.Embedding(handle)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got)
}
