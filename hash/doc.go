// Package hash converts embedding vectors into compact binary signatures
// for locality-sensitive bucketing.
//
// The built-in RandomProjection hasher owns a fixed family of random
// hyperplanes generated once at construction: one projection vector and one
// offset per signature bit. Embeddings that point in similar directions are
// statistically likely to agree on each bit, so similar vectors tend to
// collide on the full signature.
//
// Alternative hash families plug in through the Hasher interface; hashers
// that can rank nearby buckets additionally implement ProbeHasher to serve
// multi-probe lookups.
package hash
