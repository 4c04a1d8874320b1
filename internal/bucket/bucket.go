// Package bucket maps bucket signatures to the entry handles hashed into them.
package bucket

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Index is the signature -> posting list mapping of an LSH index.
//
// Posting lists are compressed roaring bitmaps. Handles are assigned
// monotonically and every handle lands in exactly one bucket exactly once,
// so ascending bitmap iteration reproduces insertion order.
//
// The index is not safe for concurrent use on its own; the owning index
// serializes bucket mutation together with entry storage so the pair appears
// atomic to readers.
type Index struct {
	buckets map[string]*roaring.Bitmap
}

// Stats summarizes bucket occupancy.
type Stats struct {
	// Buckets is the number of distinct signatures seen.
	Buckets int

	// LargestBucket is the size of the fullest bucket.
	LargestBucket uint64
}

// New creates an empty bucket index.
func New() *Index {
	return &Index{
		buckets: make(map[string]*roaring.Bitmap),
	}
}

// Insert appends a handle to the bucket for the given signature key,
// creating the bucket on first use.
func (x *Index) Insert(key string, handle uint32) {
	b, ok := x.buckets[key]
	if !ok {
		b = roaring.New()
		x.buckets[key] = b
	}

	b.Add(handle)
}

// Lookup returns the handles in the bucket for the given signature key in
// insertion order. A signature that has never been seen yields an empty
// result, not an error.
func (x *Index) Lookup(key string) []uint32 {
	b, ok := x.buckets[key]
	if !ok {
		return nil
	}

	return b.ToArray()
}

// LookupBitmap returns the posting list for the given signature key, or nil
// for a miss. The returned bitmap is borrowed; callers must not mutate it.
func (x *Index) LookupBitmap(key string) *roaring.Bitmap {
	return x.buckets[key]
}

// Len returns the number of buckets.
func (x *Index) Len() int {
	return len(x.buckets)
}

// Stats returns occupancy statistics.
func (x *Index) Stats() Stats {
	s := Stats{Buckets: len(x.buckets)}

	for _, b := range x.buckets {
		if c := b.GetCardinality(); c > s.LargestBucket {
			s.LargestBucket = c
		}
	}

	return s
}
