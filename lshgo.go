package lshgo

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/lshgo/hash"
	"github.com/hupe1980/lshgo/internal/bucket"
	"github.com/hupe1980/lshgo/metric"
	"github.com/hupe1980/lshgo/resource"
	"github.com/hupe1980/lshgo/store"
)

// Index is an in-process approximate-nearest-neighbor index over fixed-width
// embedding vectors. Embeddings are bucketed by locality-sensitive signatures
// so that similar vectors are likely to collide; queries score only the
// colliding bucket.
//
// The index is append-only: entries are never mutated or removed and handles
// are stable for the index lifetime. A single exclusive-writer / multiple-
// reader discipline guards the entry store and bucket index as a unit;
// the hasher, similarity and options are immutable after construction and
// shared without locking.
type Index struct {
	width      int
	opts       Options
	hasher     hash.Hasher
	similarity metric.Similarity
	controller *resource.Controller
	metrics    MetricsCollector
	logger     *Logger

	mu      sync.RWMutex
	entries *store.Store
	buckets *bucket.Index
	closed  bool
}

// New creates an Index for embeddings of the given width.
//
// Example:
//
//	idx, err := lshgo.New(1024, func(o *lshgo.Options) {
//	    o.MaxEntriesHint = 100_000
//	    o.SimilarityTarget = 0.9
//	})
func New(embeddingWidth int, optFns ...func(o *Options)) (*Index, error) {
	opts := applyOptions(optFns)
	opts.derive()

	if err := opts.validate(embeddingWidth); err != nil {
		return nil, err
	}

	hasher := opts.Hasher
	if hasher == nil {
		hasher = hash.NewRandomProjection(opts.HashCount, embeddingWidth, opts.Seed)
	}

	controller := resource.NewController(resource.Config{
		MemoryLimitBytes: opts.MemoryLimitBytes,
	})

	entries, err := store.New(store.Config{
		Dim:             embeddingWidth,
		InitialCapacity: opts.InitialCapacity,
		GrowRatio:       opts.GrowRatio,
		Persistent:      opts.Persistent,
		Compression:     opts.Compression,
		Controller:      controller,
	})
	if err != nil {
		return nil, translateError(err)
	}

	idx := &Index{
		width:      embeddingWidth,
		opts:       opts,
		hasher:     hasher,
		similarity: opts.Similarity,
		controller: controller,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		entries:    entries,
		buckets:    bucket.New(),
	}

	idx.logger.Debug("index created",
		"width", embeddingWidth,
		"hash_bits", hasher.Bits(),
		"bucket_width", opts.BucketWidth,
		"initial_capacity", opts.InitialCapacity,
		"persistent", opts.Persistent,
	)

	return idx, nil
}

// Insert indexes the given text under its embedding and returns the assigned
// handle. Handles are sequential from 0 and never reused. Both buffers are
// copied; the caller may reuse them after the call returns.
func (x *Index) Insert(ctx context.Context, text []byte, embedding []float32) (uint32, error) {
	start := time.Now()

	handle, err := x.insert(ctx, text, embedding)

	duration := time.Since(start)
	x.metrics.RecordInsert(duration, err)
	x.logger.LogInsert(ctx, handle, len(embedding), err)

	return handle, err
}

func (x *Index) insert(ctx context.Context, text []byte, embedding []float32) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if len(embedding) != x.width {
		return 0, &ErrDimensionMismatch{Expected: x.width, Actual: len(embedding)}
	}

	sig, err := x.hasher.Signature(embedding)
	if err != nil {
		return 0, translateError(err)
	}

	// Store append and bucket insert must appear atomic as a unit: a reader
	// must never observe a handle in a bucket before the entry is visible.
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.insertLocked(sig, text, embedding)
}

func (x *Index) insertLocked(sig hash.Signature, text []byte, embedding []float32) (uint32, error) {
	if x.closed {
		return 0, ErrClosed
	}

	handle, err := x.entries.Append(text, embedding)
	if err != nil {
		return 0, translateError(err)
	}

	x.buckets.Insert(sig.Key(), handle)

	return handle, nil
}

// BatchItem is one element of a BatchInsert call.
type BatchItem struct {
	Text      []byte
	Embedding []float32
}

// BatchInsertResult reports the outcome of a BatchInsert per item. Handles
// and Errors are parallel to the input; Handles[i] is valid exactly when
// Errors[i] is nil.
type BatchInsertResult struct {
	Handles []uint32
	Errors  []error
}

// BatchInsert indexes multiple items under a single write lock. Failures are
// reported per item; a bad embedding does not abort the remaining items, but
// an exhausted store fails every item from that point on.
func (x *Index) BatchInsert(ctx context.Context, items []BatchItem) BatchInsertResult {
	start := time.Now()

	result := BatchInsertResult{
		Handles: make([]uint32, len(items)),
		Errors:  make([]error, len(items)),
	}

	if err := ctx.Err(); err != nil {
		for i := range result.Errors {
			result.Errors[i] = err
		}
		return result
	}

	// Signatures are computed outside the lock; only store and bucket
	// mutation needs exclusion.
	sigs := make([]hash.Signature, len(items))
	for i, item := range items {
		if len(item.Embedding) != x.width {
			result.Errors[i] = &ErrDimensionMismatch{Expected: x.width, Actual: len(item.Embedding)}
			continue
		}

		sig, err := x.hasher.Signature(item.Embedding)
		if err != nil {
			result.Errors[i] = translateError(err)
			continue
		}

		sigs[i] = sig
	}

	x.mu.Lock()
	for i, item := range items {
		if result.Errors[i] != nil {
			continue
		}

		handle, err := x.insertLocked(sigs[i], item.Text, item.Embedding)
		if err != nil {
			result.Errors[i] = err
			continue
		}

		result.Handles[i] = handle
	}
	x.mu.Unlock()

	failed := 0
	for _, err := range result.Errors {
		if err != nil {
			failed++
		}
	}

	x.metrics.RecordBatchInsert(len(items), failed, time.Since(start))
	x.logger.LogBatchInsert(ctx, len(items), failed)

	return result
}

// Get returns the entry stored under the given handle. The entry is a
// read-only view; callers must not modify the returned buffers.
func (x *Index) Get(handle uint32) (store.Entry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return store.Entry{}, ErrClosed
	}

	entry, err := x.entries.Get(handle)
	return entry, translateError(err)
}

// Len returns the number of indexed entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return 0
	}

	return x.entries.Len()
}

// Stats is a point-in-time snapshot of index occupancy.
type Stats struct {
	// Entries is the number of indexed entries.
	Entries int

	// Capacity is the allocated entry capacity.
	Capacity int

	// Buckets is the number of distinct signatures seen.
	Buckets int

	// LargestBucket is the size of the fullest bucket.
	LargestBucket uint64

	// HashBits is the signature length in bits.
	HashBits int

	// BucketWidth is the configured or derived hash granularity.
	BucketWidth float64

	// MemoryBytes is the memory currently reserved for entry storage.
	MemoryBytes int64
}

// Stats returns statistics about the index.
func (x *Index) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return Stats{HashBits: x.hasher.Bits(), BucketWidth: x.opts.BucketWidth}
	}

	bs := x.buckets.Stats()

	return Stats{
		Entries:       x.entries.Len(),
		Capacity:      x.entries.Cap(),
		Buckets:       bs.Buckets,
		LargestBucket: bs.LargestBucket,
		HashBits:      x.hasher.Bits(),
		BucketWidth:   x.opts.BucketWidth,
		MemoryBytes:   x.entries.MemoryBytes(),
	}
}

// Close releases the storage owned by the index. Under persistent storage
// the backing memory is externally owned and retained. Close is idempotent;
// subsequent operations fail with ErrClosed.
func (x *Index) Close() error {
	if x == nil {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}

	x.closed = true

	err := x.entries.Close()
	x.buckets = bucket.New()

	x.logger.LogClose(context.Background(), err)

	return translateError(err)
}
