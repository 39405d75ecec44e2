package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple string", input: []byte("Hello, World!")},
		{name: "empty data", input: []byte{}},
		{name: "large data", input: bytes.Repeat([]byte("revocation list bitstring "), 1000)},
		{name: "binary data", input: []byte{0x00, 0x01, 0xff, 0x80, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := Compress(tt.input)
			require.NoError(t, err)

			decompressed, err := Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, tt.input, decompressed)
		})
	}
}

func TestCompressToBase64URLRoundTrip(t *testing.T) {
	input := make([]byte, 2048)
	input[5] = 0x01

	encoded, err := CompressToBase64URL(input)
	require.NoError(t, err)
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")

	decoded, err := DecompressFromBase64URL(encoded)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestDecompressFromBase64URLErrors(t *testing.T) {
	_, err := DecompressFromBase64URL("!!!not-base64!!!")
	assert.Error(t, err)

	_, err = DecompressFromBase64URL("bm90LWd6aXA")
	assert.Error(t, err)
}
