package lshgo

import (
	"math"

	"github.com/hupe1980/lshgo/hash"
	"github.com/hupe1980/lshgo/metric"
	"github.com/hupe1980/lshgo/store"
)

// Options contains configuration for an Index. Options are immutable once
// New returns; changing hash parameters afterwards would invalidate every
// previously stored signature.
type Options struct {
	// MaxEntriesHint is the expected dataset size. It is used only to derive
	// HashCount when HashCount is left unset.
	MaxEntriesHint int

	// SimilarityTarget is the desired similarity radius in [-1, 1]. It is
	// used only to derive BucketWidth when BucketWidth is left unset.
	SimilarityTarget float64

	// HashCount is the number of random hyperplanes, i.e. bits per bucket
	// signature. 0 means unset: the value is derived as
	// floor(ln(MaxEntriesHint)), minimum 1.
	HashCount int

	// BucketWidth documents the intended hash granularity. 0 means unset:
	// the value is derived as 2*acos(SimilarityTarget). The hashing formula
	// folds granularity in via HashCount; BucketWidth is surfaced through
	// Stats and the construction log, never used as a divisor.
	BucketWidth float64

	// Similarity scores a candidate against the query. Higher is more
	// similar and ranking consumes the raw score. Defaults to metric.Cosine.
	Similarity metric.Similarity

	// Hasher converts embeddings into bucket signatures. Nil means the
	// built-in random projection family, generated from HashCount,
	// the embedding width and Seed.
	Hasher hash.Hasher

	// InitialCapacity is the number of entries allocated up front.
	InitialCapacity int

	// GrowRatio scales the entry store capacity when it is full. Must be > 1.
	GrowRatio float64

	// Persistent marks the backing storage as externally owned. Growth is
	// unsupported in this mode and Close retains the storage.
	Persistent bool

	// Seed seeds the built-in random projection family. The default is a
	// fixed constant so indexes are deterministic unless callers opt out.
	Seed uint64

	// MemoryLimitBytes caps the memory held by entry storage. 0 = unlimited.
	MemoryLimitBytes int64

	// MaxConcurrentQueries limits BatchQuery fan-out.
	MaxConcurrentQueries int

	// Compression selects the codec applied to stored text payloads.
	// Embeddings are never compressed: scoring reads exact stored values.
	Compression store.CompressionType

	// Logger receives structured operation logs. Nil disables logging.
	Logger *Logger

	// Metrics receives operation metrics. Nil disables collection.
	Metrics MetricsCollector
}

// DefaultOptions is the default configuration for an Index.
var DefaultOptions = Options{
	MaxEntriesHint:       1_000_000,
	SimilarityTarget:     0.8,
	InitialCapacity:      1000,
	GrowRatio:            2,
	Seed:                 0xFFFFFFFF,
	MaxConcurrentQueries: 16,
	Compression:          store.CompressionNone,
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}

	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}

	if opts.Similarity == nil {
		opts.Similarity = metric.Cosine{}
	}

	return opts
}

// validate checks the effective configuration. It runs after derivation so
// explicit values and derived defaults are held to the same rules.
func (o *Options) validate(embeddingWidth int) error {
	if embeddingWidth <= 0 {
		return &ErrInvalidConfiguration{Parameter: "embedding width", Reason: "must be positive"}
	}

	if o.MaxEntriesHint < 1 {
		return &ErrInvalidConfiguration{Parameter: "max entries hint", Reason: "must be at least 1"}
	}

	if o.HashCount <= 0 {
		return &ErrInvalidConfiguration{Parameter: "hash count", Reason: "must be positive"}
	}

	if o.GrowRatio <= 1 {
		return &ErrInvalidConfiguration{Parameter: "grow ratio", Reason: "must be greater than 1"}
	}

	if o.InitialCapacity < 1 {
		return &ErrInvalidConfiguration{Parameter: "initial capacity", Reason: "must be at least 1"}
	}

	if o.MaxConcurrentQueries < 1 {
		return &ErrInvalidConfiguration{Parameter: "max concurrent queries", Reason: "must be at least 1"}
	}

	if math.IsNaN(o.BucketWidth) {
		return &ErrInvalidConfiguration{Parameter: "similarity target", Reason: "must be within [-1, 1]"}
	}

	return nil
}

// derive fills HashCount and BucketWidth from their driving parameters when
// the caller has not supplied explicit values. The zero value is the unset
// sentinel on both fields.
func (o *Options) derive() {
	if o.HashCount == 0 && o.MaxEntriesHint >= 1 {
		o.HashCount = int(math.Floor(math.Log(float64(o.MaxEntriesHint))))
		if o.HashCount < 1 {
			o.HashCount = 1
		}
	}

	if o.BucketWidth == 0 {
		// Acos yields NaN outside [-1, 1]; validate reports it.
		o.BucketWidth = 2 * math.Acos(o.SimilarityTarget)
	}
}
