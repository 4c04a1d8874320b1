package hash

import "fmt"

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Hasher converts an embedding into the signature of the bucket it belongs
// to. Implementations hold their own immutable state and must be safe for
// concurrent use.
type Hasher interface {
	// Bits returns the signature length in bits.
	Bits() int

	// Signature computes the signature of the given embedding.
	Signature(embedding []float32) (Signature, error)
}

// ProbeHasher is implemented by hashers that can propose nearby signatures
// for multi-probe lookups.
type ProbeHasher interface {
	Hasher

	// SignatureWithProbes returns the base signature followed by up to
	// probes single-bit variants, most promising first.
	SignatureWithProbes(embedding []float32, probes int) ([]Signature, error)
}
