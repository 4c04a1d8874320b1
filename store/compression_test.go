package store

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionTypeString(t *testing.T) {
	assert.Equal(t, "None", CompressionNone.String())
	assert.Equal(t, "LZ4", CompressionLZ4.String())
	assert.Equal(t, "ZSTD", CompressionZSTD.String())
	assert.Equal(t, "Unknown", CompressionType(9).String())
}

func TestPayloadRoundTrip(t *testing.T) {
	compressible := make([]byte, 1024)
	for i := range compressible {
		compressible[i] = byte(i % 4)
	}

	incompressible := make([]byte, 256)
	rng := rand.New(rand.NewSource(1)) // nolint gosec
	_, err := rng.Read(incompressible)
	require.NoError(t, err)

	payloads := map[string][]byte{
		"compressible":   compressible,
		"incompressible": incompressible,
		"tiny":           []byte("x"),
		"empty":          nil,
	}

	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for name, data := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				stored, err := compressPayload(data, ct)
				require.NoError(t, err)

				restored, err := decompressPayload(stored, ct)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(restored))
				assert.Equal(t, []byte(data), []byte(restored))
			})
		}
	}
}

func TestCompressPayloadDoesNotRetainInput(t *testing.T) {
	data := []byte("do not alias me")

	stored, err := compressPayload(data, CompressionNone)
	require.NoError(t, err)

	data[0] = 'X'
	assert.Equal(t, byte('d'), stored[0])
}

func TestCompressPayloadIncompressibleFallback(t *testing.T) {
	incompressible := make([]byte, 128)
	rng := rand.New(rand.NewSource(2)) // nolint gosec
	_, err := rng.Read(incompressible)
	require.NoError(t, err)

	stored, err := compressPayload(incompressible, CompressionLZ4)
	require.NoError(t, err)
	assert.Equal(t, payloadHeaderSize+len(incompressible), len(stored),
		"incompressible payloads fall back to the uncompressed header form")
}

func TestCompressPayloadUnknownType(t *testing.T) {
	_, err := compressPayload([]byte("abc"), CompressionType(9))
	assert.Error(t, err)

	_, err = decompressPayload(make([]byte, payloadHeaderSize+1), CompressionType(9))
	assert.Error(t, err)
}

func TestDecompressPayloadTruncated(t *testing.T) {
	_, err := decompressPayload([]byte{1, 2, 3}, CompressionLZ4)
	assert.Error(t, err)
}
