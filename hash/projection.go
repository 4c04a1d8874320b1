package hash

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hupe1980/lshgo/internal/math32"
)

// Compile time check to ensure RandomProjection satisfies the ProbeHasher interface.
var _ ProbeHasher = (*RandomProjection)(nil)

// RandomProjection hashes embeddings with a family of random hyperplanes.
// Projection components are drawn from a standard normal distribution and
// offsets from a uniform distribution over [0, bits). The family is
// generated exactly once at construction and never mutated afterwards:
// regenerating it would invalidate every previously computed signature.
type RandomProjection struct {
	bits        int
	dim         int
	projections []float32 // bits rows of dim components, row-major
	offsets     []float32
}

// NewRandomProjection generates a projection family of the given signature
// length and embedding dimensionality, seeded deterministically.
func NewRandomProjection(bits, dim int, seed uint64) *RandomProjection {
	if bits <= 0 || dim <= 0 {
		panic("hash: random projection requires positive bits and dim")
	}

	src := rand.NewPCG(seed, seed)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	uniform := distuv.Uniform{Min: 0, Max: float64(bits), Src: src}

	projections := make([]float32, bits*dim)
	for i := range projections {
		projections[i] = float32(normal.Rand())
	}

	offsets := make([]float32, bits)
	for i := range offsets {
		offsets[i] = float32(uniform.Rand())
	}

	return &RandomProjection{
		bits:        bits,
		dim:         dim,
		projections: projections,
		offsets:     offsets,
	}
}

// Bits returns the signature length in bits.
func (rp *RandomProjection) Bits() int {
	return rp.bits
}

// Dim returns the embedding dimensionality the family was generated for.
func (rp *RandomProjection) Dim() int {
	return rp.dim
}

// Signature computes the signature of the given embedding. Bit i is the
// parity of the integer part of |(dot_i + offset_i) / bits|, where dot_i is
// the projection of the embedding onto hyperplane i.
func (rp *RandomProjection) Signature(embedding []float32) (Signature, error) {
	if len(embedding) != rp.dim {
		return Signature{}, &ErrDimensionMismatch{Expected: rp.dim, Actual: len(embedding)}
	}

	sig := NewSignature(rp.bits)
	for i := 0; i < rp.bits; i++ {
		if parity(rp.project(embedding, i)) {
			sig.SetBit(i)
		}
	}

	return sig, nil
}

// SignatureWithProbes returns the base signature followed by up to probes
// single-bit variants. Probe bits are chosen by how close the projection
// value sits to a parity boundary, closest first, so earlier probes are the
// buckets the embedding most nearly fell into.
func (rp *RandomProjection) SignatureWithProbes(embedding []float32, probes int) ([]Signature, error) {
	if len(embedding) != rp.dim {
		return nil, &ErrDimensionMismatch{Expected: rp.dim, Actual: len(embedding)}
	}

	sig := NewSignature(rp.bits)
	magnitudes := make([]float64, rp.bits)

	for i := 0; i < rp.bits; i++ {
		v := rp.project(embedding, i)
		magnitudes[i] = math.Abs(float64(v))

		if parity(v) {
			sig.SetBit(i)
		}
	}

	if probes > rp.bits {
		probes = rp.bits
	}

	if probes <= 0 {
		return []Signature{sig}, nil
	}

	order := make([]int, rp.bits)
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {
		da, db := flipDistance(magnitudes[order[a]]), flipDistance(magnitudes[order[b]])
		if da != db {
			return da < db
		}

		return order[a] < order[b]
	})

	signatures := make([]Signature, 0, probes+1)
	signatures = append(signatures, sig)

	for _, bit := range order[:probes] {
		probe := sig.Clone()
		probe.FlipBit(bit)
		signatures = append(signatures, probe)
	}

	return signatures, nil
}

func (rp *RandomProjection) project(embedding []float32, i int) float32 {
	dot := math32.Dot(rp.projections[i*rp.dim:(i+1)*rp.dim], embedding)
	return (dot + rp.offsets[i]) / float32(rp.bits)
}

// parity reports whether the integer part of |v| is odd.
func parity(v float32) bool {
	return math.Mod(math.Floor(math.Abs(float64(v))), 2) == 1
}

// flipDistance measures how far a projection magnitude is from the nearest
// parity boundary (an integer crossing).
func flipDistance(magnitude float64) float64 {
	frac := magnitude - math.Floor(magnitude)
	return math.Min(frac, 1-frac)
}
