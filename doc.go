// Package lshgo provides an embedded similarity index for Go built on
// locality-sensitive hashing.
//
// Embeddings are bucketed by random hyperplane projections so that similar
// vectors are likely to collide; a query hashes into one bucket, scores the
// colliding entries with a pluggable similarity function and returns the
// best matches ranked by raw score. The index is append-only and entirely
// in-memory: entries are (text, embedding) pairs identified by stable
// integer handles assigned sequentially from 0.
//
// # Quick Start
//
// Create an index for 1024-dimensional embeddings and query it:
//
//	ctx := context.Background()
//
//	idx, err := lshgo.New(1024, func(o *lshgo.Options) {
//	    o.MaxEntriesHint = 100_000   // drives the default signature length
//	    o.SimilarityTarget = 0.9
//	})
//	if err != nil {
//	    panic(err)
//	}
//	defer idx.Close()
//
//	handle, err := idx.Insert(ctx, []byte("my document"), embedding)
//
//	results, err := idx.Query(ctx, query, func(o *lshgo.QueryOptions) {
//	    o.TopN = 10
//	    o.Threshold = 0.9
//	})
//	for _, r := range results.Results {
//	    fmt.Printf("%s scored %.3f\n", r.Entry.Text, r.Score)
//	}
//
// An empty result set with Total = 0 is a miss, not an error: LSH offers no
// guarantee that similar vectors always share a bucket. Widen recall with
// multi-probe lookups (QueryOptions.Probes) when buckets are sparse.
//
// # Fluent API
//
// Search exposes the same query pipeline as a builder:
//
//	best, err := idx.Search(query).TopN(5).Threshold(0.8).First(ctx)
//
//	for result, err := range idx.Search(query).TopN(100).Stream(ctx) {
//	    if err != nil { break }
//	    process(result)
//	}
//
// # Pluggable Strategies
//
// The hash family and the similarity function are capability objects:
// implement hash.Hasher for an alternative hash family or metric.Similarity
// for an alternative scoring rule and set them via Options. The built-in
// defaults are the random projection family (hash.RandomProjection) and
// cosine similarity (metric.Cosine).
//
// # Concurrency
//
// All operations are safe for concurrent use. Writers are serialized;
// queries run in parallel against a stable view of the index.
package lshgo
