package lshgo

import (
	"context"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Search creates a new fluent query builder for the given embedding.
//
// Example:
//
//	results, err := idx.Search(query).
//	    TopN(10).
//	    Threshold(0.9).
//	    Execute(ctx)
//
//	// Or with streaming:
//	for result, err := range idx.Search(query).TopN(100).Stream(ctx) {
//	    if err != nil { break }
//	    process(result)
//	}
func (x *Index) Search(embedding []float32) *QueryBuilder {
	return &QueryBuilder{
		x:         x,
		embedding: embedding,
		opts:      defaultQueryOptions(),
	}
}

// QueryBuilder is a fluent builder for constructing queries.
type QueryBuilder struct {
	x         *Index
	embedding []float32
	opts      QueryOptions
}

// TopN sets the maximum number of results to return.
func (qb *QueryBuilder) TopN(n int) *QueryBuilder {
	qb.opts.TopN = n
	return qb
}

// Threshold sets the minimum score a result must reach.
func (qb *QueryBuilder) Threshold(t float32) *QueryBuilder {
	qb.opts.Threshold = t
	return qb
}

// Probes widens the lookup to the given number of neighboring buckets.
func (qb *QueryBuilder) Probes(n int) *QueryBuilder {
	qb.opts.Probes = n
	return qb
}

// Policy selects how truncation and threshold filtering compose.
func (qb *QueryBuilder) Policy(p SelectionPolicy) *QueryBuilder {
	qb.opts.Policy = p
	return qb
}

// Filter restricts candidates to handles for which fn returns true.
func (qb *QueryBuilder) Filter(fn func(handle uint32) bool) *QueryBuilder {
	qb.opts.Filter = fn
	return qb
}

// AllowList restricts candidates to handles present in the bitmap.
func (qb *QueryBuilder) AllowList(bm *roaring.Bitmap) *QueryBuilder {
	qb.opts.AllowList = bm
	return qb
}

// Execute runs the query and returns the results.
func (qb *QueryBuilder) Execute(ctx context.Context) (*QueryResults, error) {
	return qb.x.Query(ctx, qb.embedding, func(o *QueryOptions) {
		*o = qb.opts
	})
}

// Stream returns an iterator over query results for memory-efficient
// processing. Results are yielded best first; break to terminate early.
func (qb *QueryBuilder) Stream(ctx context.Context) iter.Seq2[QueryResult, error] {
	return qb.x.QueryStream(ctx, qb.embedding, func(o *QueryOptions) {
		*o = qb.opts
	})
}

// First returns only the best result, or ErrNotFound if none matched.
func (qb *QueryBuilder) First(ctx context.Context) (QueryResult, error) {
	qb.opts.TopN = 1

	results, err := qb.Execute(ctx)
	if err != nil {
		return QueryResult{}, err
	}
	if len(results.Results) == 0 {
		return QueryResult{}, ErrNotFound
	}

	return results.Results[0], nil
}

// Count executes the query and returns the number of results.
func (qb *QueryBuilder) Count(ctx context.Context) (int, error) {
	results, err := qb.Execute(ctx)
	if err != nil {
		return 0, err
	}

	return len(results.Results), nil
}

// Exists checks if at least one result matches the query.
func (qb *QueryBuilder) Exists(ctx context.Context) (bool, error) {
	qb.opts.TopN = 1

	results, err := qb.Execute(ctx)
	if err != nil {
		return false, err
	}

	return len(results.Results) > 0, nil
}
