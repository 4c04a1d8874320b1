package metric

import (
	"errors"

	"github.com/hupe1980/lshgo/internal/math32"
)

// ErrSizeMismatch is returned when two vectors of different lengths are compared.
var ErrSizeMismatch = errors.New("metric: vector sizes do not match")

// Similarity scores a pair of equal-length vectors. Higher scores mean more
// similar; ranking consumes the raw score without transforming it.
// Implementations must be safe for concurrent use.
type Similarity interface {
	Score(v1, v2 []float32) (float32, error)
}

// SimilarityFunc adapts an ordinary function to the Similarity interface.
type SimilarityFunc func(v1, v2 []float32) (float32, error)

// Score calls f(v1, v2).
func (f SimilarityFunc) Score(v1, v2 []float32) (float32, error) {
	return f(v1, v2)
}

// Cosine scores by cosine similarity in [-1, 1].
type Cosine struct{}

// Score implements the Similarity interface.
func (Cosine) Score(v1, v2 []float32) (float32, error) {
	return CosineSimilarity(v1, v2)
}

// Dot scores by raw dot product. Useful when all vectors are pre-normalized,
// where it coincides with cosine similarity at a fraction of the cost.
type Dot struct{}

// Score implements the Similarity interface.
func (Dot) Score(v1, v2 []float32) (float32, error) {
	return DotProduct(v1, v2)
}

var (
	_ Similarity = Cosine{}
	_ Similarity = Dot{}
	_ Similarity = (SimilarityFunc)(nil)
)

// Magnitude calculates the magnitude (length) of a float32 slice.
func Magnitude(v []float32) float32 {
	return math32.Sqrt(math32.Dot(v, v))
}

// CosineSimilarity calculates the cosine similarity between two float32
// slices in a single pass, accumulating the dot product and both squared
// norms together. If either vector is all zeros the result is NaN; callers
// are responsible for avoiding zero vectors, the value is not corrected here.
func CosineSimilarity(v1, v2 []float32) (float32, error) {
	// Check if the vector sizes match
	if len(v1) != len(v2) {
		return 0, ErrSizeMismatch
	}

	var dot, norm1, norm2 float32
	for i := range v1 {
		dot += v1[i] * v2[i]
		norm1 += v1[i] * v1[i]
		norm2 += v2[i] * v2[i]
	}

	return dot / (math32.Sqrt(norm1) * math32.Sqrt(norm2)), nil
}

// DotProduct calculates the dot product between two float32 slices.
func DotProduct(v1, v2 []float32) (float32, error) {
	// Check if the vector sizes match
	if len(v1) != len(v2) {
		return 0, ErrSizeMismatch
	}

	return math32.Dot(v1, v2), nil
}
