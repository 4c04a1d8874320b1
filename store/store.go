// Package store provides the append-only entry storage backing an index.
package store

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/hupe1980/lshgo/resource"
)

var (
	// ErrStorageExhausted is returned when the store cannot grow: growth is
	// requested in persistent mode, or the memory budget denies the new
	// allocation. The store is left at its prior size and capacity.
	ErrStorageExhausted = errors.New("store: storage exhausted")

	// ErrHandleNotFound is returned when a handle does not address a stored entry.
	ErrHandleNotFound = errors.New("store: handle not found")

	// ErrWrongDimension is returned when an embedding length disagrees with the store.
	ErrWrongDimension = errors.New("store: wrong embedding dimension")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("store: closed")
)

// Entry is one indexed item: the original text payload and its embedding.
type Entry struct {
	Text      []byte
	Embedding []float32
}

// Config holds store construction parameters.
type Config struct {
	// Dim is the embedding dimensionality, fixed for the store lifetime.
	Dim int

	// InitialCapacity is the number of entries allocated up front.
	InitialCapacity int

	// GrowRatio scales the capacity when the store is full. Must be > 1;
	// the next capacity is the current capacity times GrowRatio, rounded up.
	GrowRatio float64

	// Persistent marks the backing storage as externally owned. Growth is
	// unsupported in this mode and Close retains the backing storage.
	Persistent bool

	// Compression selects the codec applied to stored text payloads.
	Compression CompressionType

	// Controller meters slab and payload allocations. Nil means unlimited.
	Controller *resource.Controller
}

// Store is an append-only, growable collection of entries addressed by
// sequential handles starting at 0.
//
// Embeddings are stored contiguously in a single []float32 slab, providing
// cache locality for scans: entry h occupies slab[h*dim : (h+1)*dim]. Text
// payloads live in a parallel column, optionally block-compressed.
//
// The store copies both buffers on append and never mutates or removes an
// entry afterwards. All methods are safe for concurrent use.
type Store struct {
	dim         int
	growRatio   float64
	persistent  bool
	compression CompressionType
	controller  *resource.Controller

	mu           sync.RWMutex
	embeddings   []float32 // len = capacity*dim
	texts        [][]byte  // len = size, cap = capacity
	size         int
	capacity     int
	slabBytes    int64
	payloadBytes int64
	closed       bool
}

// New creates a store. Degenerate parameters are normalized: a non-positive
// dimension or capacity becomes 1 and a grow ratio of 1 or less becomes 2.
// It fails with ErrStorageExhausted when the controller denies the initial
// allocation.
func New(cfg Config) (*Store, error) {
	if cfg.Dim <= 0 {
		cfg.Dim = 1
	}

	if cfg.InitialCapacity < 1 {
		cfg.InitialCapacity = 1
	}

	if cfg.GrowRatio <= 1 {
		cfg.GrowRatio = 2
	}

	slabBytes := embeddingBytes(cfg.InitialCapacity, cfg.Dim)
	if !cfg.Controller.TryAcquireMemory(slabBytes) {
		return nil, fmt.Errorf("%w: initial allocation of %d bytes denied", ErrStorageExhausted, slabBytes)
	}

	return &Store{
		dim:         cfg.Dim,
		growRatio:   cfg.GrowRatio,
		persistent:  cfg.Persistent,
		compression: cfg.Compression,
		controller:  cfg.Controller,
		embeddings:  make([]float32, cfg.InitialCapacity*cfg.Dim),
		texts:       make([][]byte, 0, cfg.InitialCapacity),
		capacity:    cfg.InitialCapacity,
		slabBytes:   slabBytes,
	}, nil
}

// Dim returns the embedding dimensionality.
func (s *Store) Dim() int {
	return s.dim
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.size
}

// Cap returns the allocated entry capacity.
func (s *Store) Cap() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.capacity
}

// Append copies the given text and embedding into the store and returns the
// assigned handle. Handles are sequential from 0 and never reused. When the
// store is full it grows by the configured ratio first; a failed growth
// leaves size and capacity untouched and no partial entry behind.
func (s *Store) Append(text []byte, embedding []float32) (uint32, error) {
	if len(embedding) != s.dim {
		return 0, ErrWrongDimension
	}

	payload, err := compressPayload(text, s.compression)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	newPayloadBytes := int64(len(payload))
	if !s.controller.TryAcquireMemory(newPayloadBytes) {
		return 0, fmt.Errorf("%w: payload of %d bytes denied", ErrStorageExhausted, newPayloadBytes)
	}

	if s.size == s.capacity {
		if err := s.growLocked(); err != nil {
			s.controller.ReleaseMemory(newPayloadBytes)
			return 0, err
		}
	}

	handle := uint32(s.size)

	copy(s.embeddings[s.size*s.dim:(s.size+1)*s.dim], embedding)
	s.texts = append(s.texts, payload)
	s.payloadBytes += newPayloadBytes
	s.size++

	return handle, nil
}

// growLocked replaces the embedding slab with one scaled by the grow ratio,
// copies the occupied prefix across and releases the old allocation.
func (s *Store) growLocked() error {
	if s.persistent {
		return fmt.Errorf("%w: growth is unsupported with persistent storage", ErrStorageExhausted)
	}

	newCapacity := int(math.Ceil(s.growRatio * float64(s.capacity)))
	if newCapacity <= s.capacity {
		newCapacity = s.capacity + 1
	}

	newSlabBytes := embeddingBytes(newCapacity, s.dim)
	if !s.controller.TryAcquireMemory(newSlabBytes) {
		return fmt.Errorf("%w: slab of %d bytes denied", ErrStorageExhausted, newSlabBytes)
	}

	newEmbeddings := make([]float32, newCapacity*s.dim)
	copy(newEmbeddings, s.embeddings[:s.size*s.dim])

	newTexts := make([][]byte, s.size, newCapacity)
	copy(newTexts, s.texts)

	s.controller.ReleaseMemory(s.slabBytes)

	s.embeddings = newEmbeddings
	s.texts = newTexts
	s.capacity = newCapacity
	s.slabBytes = newSlabBytes

	return nil
}

// Get returns the entry at the given handle. The returned embedding aliases
// internal memory; do not modify it. The text is a fresh copy when the store
// compresses payloads and aliases internal memory otherwise.
func (s *Store) Get(handle uint32) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Entry{}, ErrClosed
	}

	if int(handle) >= s.size {
		return Entry{}, fmt.Errorf("%w: %d", ErrHandleNotFound, handle)
	}

	text, err := decompressPayload(s.texts[handle], s.compression)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Text:      text,
		Embedding: s.embeddingLocked(handle),
	}, nil
}

// Embedding returns the stored embedding for the given handle without
// touching the text column. The returned slice aliases internal memory; do
// not modify it.
func (s *Store) Embedding(handle uint32) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	if int(handle) >= s.size {
		return nil, fmt.Errorf("%w: %d", ErrHandleNotFound, handle)
	}

	return s.embeddingLocked(handle), nil
}

func (s *Store) embeddingLocked(handle uint32) []float32 {
	start := int(handle) * s.dim
	end := start + s.dim

	return s.embeddings[start:end:end]
}

// MemoryBytes returns the bytes currently reserved for the slab and payloads.
func (s *Store) MemoryBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.slabBytes + s.payloadBytes
}

// Close releases the owned storage and returns its reservation to the
// controller. In persistent mode the backing storage is externally owned
// and retained. Close is idempotent; subsequent operations fail ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	if s.persistent {
		return nil
	}

	s.embeddings = nil
	s.texts = nil
	s.controller.ReleaseMemory(s.slabBytes + s.payloadBytes)
	s.slabBytes = 0
	s.payloadBytes = 0

	return nil
}

func embeddingBytes(capacity, dim int) int64 {
	return int64(capacity) * int64(dim) * 4
}
