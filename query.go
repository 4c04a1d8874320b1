package lshgo

import (
	"context"
	"iter"
	"math"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lshgo/hash"
	"github.com/hupe1980/lshgo/store"
)

// SelectionPolicy controls how top-n truncation and threshold filtering
// compose during result selection.
type SelectionPolicy uint8

const (
	// SelectTruncateThenFilter keeps the best min(TopN, Total) candidates
	// first and then drops those below the threshold. This is the default.
	SelectTruncateThenFilter SelectionPolicy = iota

	// SelectFilterThenTruncate drops candidates below the threshold first
	// and then keeps the best TopN of the remainder.
	SelectFilterThenTruncate
)

// QueryOptions contains per-query options.
type QueryOptions struct {
	// TopN is the maximum number of results to return.
	TopN int

	// Threshold is the minimum score a result must reach. The default is
	// negative infinity: no filtering, NaN scores included, ranked last.
	Threshold float32

	// Probes widens the lookup to the given number of neighboring buckets
	// when the hasher supports multi-probe. 0 queries the exact bucket only.
	Probes int

	// Policy selects how truncation and threshold filtering compose.
	Policy SelectionPolicy

	// Filter restricts candidates to handles for which it returns true.
	Filter func(handle uint32) bool

	// AllowList restricts candidates to handles present in the bitmap.
	AllowList *roaring.Bitmap
}

// QueryResult is one ranked query hit.
type QueryResult struct {
	// Handle identifies the indexed entry.
	Handle uint32

	// Entry is a read-only view of the stored entry.
	Entry store.Entry

	// Score is the raw similarity between the query and the entry.
	Score float32
}

// QueryResults is the outcome of a query.
type QueryResults struct {
	// Results holds the selected hits, best first.
	Results []QueryResult

	// Total is the candidate count before truncation and filtering: the
	// size of the matched bucket set after any allow-list or filter was
	// applied. Total = 0 with an empty Results is a miss, not an error.
	Total int
}

func defaultQueryOptions() QueryOptions {
	return QueryOptions{
		TopN:      10,
		Threshold: float32(math.Inf(-1)),
		Policy:    SelectTruncateThenFilter,
	}
}

// Query retrieves the entries most similar to the given embedding.
//
// The query hashes into a single bucket (plus probe buckets when requested);
// an embedding whose bucket is empty yields Total = 0 and no results, which
// is a normal outcome: LSH offers no guarantee that similar vectors always
// share a bucket. Candidates are ranked by the raw similarity score,
// descending, ties broken by ascending handle; NaN scores rank last.
func (x *Index) Query(ctx context.Context, embedding []float32, optFns ...func(o *QueryOptions)) (*QueryResults, error) {
	start := time.Now()

	opts := defaultQueryOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	results, err := x.query(ctx, embedding, opts)

	duration := time.Since(start)
	if err != nil {
		x.metrics.RecordQuery(0, duration, err)
		x.logger.LogQuery(ctx, opts.TopN, 0, 0, err)
		return nil, err
	}

	x.metrics.RecordQuery(results.Total, duration, nil)
	x.logger.LogQuery(ctx, opts.TopN, results.Total, len(results.Results), nil)

	return results, nil
}

type scoredCandidate struct {
	handle uint32
	score  float32
}

func (x *Index) query(ctx context.Context, embedding []float32, opts QueryOptions) (*QueryResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(embedding) != x.width {
		return nil, &ErrDimensionMismatch{Expected: x.width, Actual: len(embedding)}
	}

	sigs, err := x.signatures(embedding, opts.Probes)
	if err != nil {
		return nil, translateError(err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, ErrClosed
	}

	candidates := x.collectLocked(sigs, opts)

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, handle := range candidates {
		stored, err := x.entries.Embedding(handle)
		if err != nil {
			return nil, translateError(err)
		}

		// Each candidate is scored against its own stored embedding.
		score, err := x.similarity.Score(embedding, stored)
		if err != nil {
			return nil, translateError(err)
		}

		scored = append(scored, scoredCandidate{handle: handle, score: score})
	}

	sortCandidates(scored)
	selected := selectCandidates(scored, opts)

	results := make([]QueryResult, 0, len(selected))
	for _, c := range selected {
		entry, err := x.entries.Get(c.handle)
		if err != nil {
			return nil, translateError(err)
		}

		results = append(results, QueryResult{
			Handle: c.handle,
			Entry:  entry,
			Score:  c.score,
		})
	}

	return &QueryResults{
		Results: results,
		Total:   len(scored),
	}, nil
}

// signatures returns the bucket signatures to probe, the exact bucket first.
func (x *Index) signatures(embedding []float32, probes int) ([]hash.Signature, error) {
	if probes > 0 {
		if ph, ok := x.hasher.(hash.ProbeHasher); ok {
			return ph.SignatureWithProbes(embedding, probes)
		}
	}

	sig, err := x.hasher.Signature(embedding)
	if err != nil {
		return nil, err
	}

	return []hash.Signature{sig}, nil
}

// collectLocked gathers the candidate handles for the given signatures and
// applies the allow-list and predicate restrictions. Every handle lives in
// exactly one bucket, so the union over probe buckets contains no duplicates
// and ascending order is insertion order.
func (x *Index) collectLocked(sigs []hash.Signature, opts QueryOptions) []uint32 {
	merged := roaring.New()
	for _, sig := range sigs {
		if b := x.buckets.LookupBitmap(sig.Key()); b != nil {
			merged.Or(b)
		}
	}

	if opts.AllowList != nil {
		merged.And(opts.AllowList)
	}

	candidates := merged.ToArray()

	if opts.Filter != nil {
		kept := candidates[:0]
		for _, handle := range candidates {
			if opts.Filter(handle) {
				kept = append(kept, handle)
			}
		}
		candidates = kept
	}

	return candidates
}

// sortCandidates orders by score descending, NaN last, ties by ascending
// handle. The raw similarity score is the sole ranking key; it is never
// inverted or transformed.
func sortCandidates(scored []scoredCandidate) {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]

		aNaN := math.IsNaN(float64(a.score))
		bNaN := math.IsNaN(float64(b.score))
		if aNaN != bNaN {
			return bNaN
		}

		if a.score != b.score {
			return a.score > b.score
		}

		return a.handle < b.handle
	})
}

// selectCandidates applies the two-stage selection to the sorted candidates.
// A threshold of -Inf disables filtering entirely, keeping NaN scores.
func selectCandidates(scored []scoredCandidate, opts QueryOptions) []scoredCandidate {
	topN := opts.TopN
	if topN < 0 {
		topN = 0
	}

	unfiltered := math.IsInf(float64(opts.Threshold), -1)

	truncate := func(s []scoredCandidate) []scoredCandidate {
		if len(s) > topN {
			return s[:topN]
		}
		return s
	}

	filter := func(s []scoredCandidate) []scoredCandidate {
		if unfiltered {
			return s
		}

		kept := make([]scoredCandidate, 0, len(s))
		for _, c := range s {
			if c.score >= opts.Threshold {
				kept = append(kept, c)
			}
		}
		return kept
	}

	if opts.Policy == SelectFilterThenTruncate {
		return truncate(filter(scored))
	}

	return filter(truncate(scored))
}

// QueryStream returns an iterator over query results, best first. The
// iterator supports early termination by breaking from the loop.
//
// Example:
//
//	for result, err := range idx.QueryStream(ctx, query) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    process(result)
//	}
func (x *Index) QueryStream(ctx context.Context, embedding []float32, optFns ...func(o *QueryOptions)) iter.Seq2[QueryResult, error] {
	return func(yield func(QueryResult, error) bool) {
		results, err := x.Query(ctx, embedding, optFns...)
		if err != nil {
			yield(QueryResult{}, err)
			return
		}

		for _, r := range results.Results {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// BatchQuery runs one query per embedding concurrently, bounded by the
// configured MaxConcurrentQueries, and returns the outcomes in input order.
// The first error cancels the remaining queries.
func (x *Index) BatchQuery(ctx context.Context, embeddings [][]float32, optFns ...func(o *QueryOptions)) ([]*QueryResults, error) {
	results := make([]*QueryResults, len(embeddings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.opts.MaxConcurrentQueries)

	for i, embedding := range embeddings {
		g.Go(func() error {
			r, err := x.Query(gctx, embedding, optFns...)
			if err != nil {
				return err
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
