package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureBits(t *testing.T) {
	sig := NewSignature(10)
	require.Equal(t, 10, sig.Len())

	for i := 0; i < 10; i++ {
		assert.False(t, sig.Bit(i))
	}

	sig.SetBit(0)
	sig.SetBit(9)
	assert.True(t, sig.Bit(0))
	assert.True(t, sig.Bit(9))
	assert.False(t, sig.Bit(5))

	sig.FlipBit(9)
	assert.False(t, sig.Bit(9))

	sig.FlipBit(5)
	assert.True(t, sig.Bit(5))
}

func TestSignatureOutOfRange(t *testing.T) {
	sig := NewSignature(4)

	assert.Panics(t, func() { sig.Bit(4) })
	assert.Panics(t, func() { sig.SetBit(-1) })
}

func TestSignatureKey(t *testing.T) {
	a := NewSignature(12)
	b := NewSignature(12)
	assert.Equal(t, a.Key(), b.Key())

	a.SetBit(3)
	assert.NotEqual(t, a.Key(), b.Key())

	b.SetBit(3)
	assert.Equal(t, a.Key(), b.Key())
}

func TestSignatureClone(t *testing.T) {
	sig := NewSignature(8)
	sig.SetBit(2)

	clone := sig.Clone()
	require.True(t, sig.Equal(clone))

	clone.FlipBit(7)
	assert.False(t, sig.Equal(clone))
	assert.False(t, sig.Bit(7))
}

func TestSignatureEqual(t *testing.T) {
	a := NewSignature(8)
	b := NewSignature(9)
	assert.False(t, a.Equal(b))

	c := NewSignature(8)
	assert.True(t, a.Equal(c))

	c.SetBit(1)
	assert.False(t, a.Equal(c))
}

func TestSignatureHamming(t *testing.T) {
	a := NewSignature(16)
	b := NewSignature(16)

	distance, err := a.Hamming(b)
	require.NoError(t, err)
	assert.Equal(t, 0, distance)

	a.SetBit(1)
	a.SetBit(8)
	b.SetBit(8)
	b.SetBit(15)

	distance, err = a.Hamming(b)
	require.NoError(t, err)
	assert.Equal(t, 2, distance)

	_, err = a.Hamming(NewSignature(8))
	var mismatchErr *ErrDimensionMismatch
	assert.ErrorAs(t, err, &mismatchErr)
}

func TestSignatureString(t *testing.T) {
	sig := NewSignature(5)
	sig.SetBit(1)
	sig.SetBit(4)

	assert.Equal(t, "01001", sig.String())
}
