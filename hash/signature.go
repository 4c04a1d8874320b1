package hash

import (
	"math/bits"
	"strings"
)

// Signature is a fixed-length bit string identifying a bucket. The zero
// value is an empty signature; use NewSignature to allocate one of a given
// length.
type Signature struct {
	bits []byte
	size int
}

// NewSignature returns an all-zero signature of the given length in bits.
func NewSignature(size int) Signature {
	if size < 0 {
		panic("hash: negative signature size")
	}

	return Signature{
		bits: make([]byte, (size+7)/8),
		size: size,
	}
}

// Len returns the signature length in bits.
func (s Signature) Len() int {
	return s.size
}

// Bit reports whether bit i is set.
func (s Signature) Bit(i int) bool {
	s.check(i)
	return s.bits[i/8]&(1<<(i%8)) != 0
}

// SetBit sets bit i.
func (s Signature) SetBit(i int) {
	s.check(i)
	s.bits[i/8] |= 1 << (i % 8)
}

// FlipBit inverts bit i.
func (s Signature) FlipBit(i int) {
	s.check(i)
	s.bits[i/8] ^= 1 << (i % 8)
}

// Clone returns an independent copy of the signature.
func (s Signature) Clone() Signature {
	c := Signature{
		bits: make([]byte, len(s.bits)),
		size: s.size,
	}
	copy(c.bits, s.bits)

	return c
}

// Key returns the packed form of the signature for use as a map key.
// Signatures of equal length have equal keys exactly when their bits match.
func (s Signature) Key() string {
	return string(s.bits)
}

// Equal reports whether two signatures have the same length and bits.
func (s Signature) Equal(other Signature) bool {
	if s.size != other.size {
		return false
	}

	for i := range s.bits {
		if s.bits[i] != other.bits[i] {
			return false
		}
	}

	return true
}

// Hamming returns the number of bits on which two signatures of equal
// length disagree.
func (s Signature) Hamming(other Signature) (int, error) {
	if s.size != other.size {
		return 0, &ErrDimensionMismatch{Expected: s.size, Actual: other.size}
	}

	var distance int
	for i := range s.bits {
		distance += bits.OnesCount8(s.bits[i] ^ other.bits[i])
	}

	return distance, nil
}

// String renders the signature as a bit string, lowest bit first.
func (s Signature) String() string {
	var sb strings.Builder
	sb.Grow(s.size)

	for i := 0; i < s.size; i++ {
		if s.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

func (s Signature) check(i int) {
	if i < 0 || i >= s.size {
		panic("hash: signature bit index out of range")
	}
}
