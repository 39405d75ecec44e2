package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alicePriv = "1111111111111111111111111111111111111111111111111111111111111111"
	bobPriv   = "2222222222222222222222222222222222222222222222222222222222222222"
)

func TestSignAndVerify(t *testing.T) {
	digest := Digest([]byte("payload under test"))

	sig, err := ECDSASign(digest, alicePriv)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	pubHex, err := PublicKeyHexFromPrivate(alicePriv)
	require.NoError(t, err)

	valid, err := ECDSAVerifySignature(pubHex, hex.EncodeToString(sig), digest)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	digest := Digest([]byte("payload under test"))

	sig, err := ECDSASign(digest, alicePriv)
	require.NoError(t, err)

	bobPub, err := PublicKeyHexFromPrivate(bobPriv)
	require.NoError(t, err)

	valid, err := ECDSAVerifySignature(bobPub, hex.EncodeToString(sig), digest)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyRejectsWrongDigest(t *testing.T) {
	sig, err := ECDSASign(Digest([]byte("original")), alicePriv)
	require.NoError(t, err)

	pubHex, err := PublicKeyHexFromPrivate(alicePriv)
	require.NoError(t, err)

	valid, err := ECDSAVerifySignature(pubHex, hex.EncodeToString(sig), Digest([]byte("tampered")))
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestSharedSecretSymmetry(t *testing.T) {
	alicePub, err := PublicKeyHexFromPrivate(alicePriv)
	require.NoError(t, err)
	bobPub, err := PublicKeyHexFromPrivate(bobPriv)
	require.NoError(t, err)

	aliceSide, err := SharedSecret(bobPub, alicePriv)
	require.NoError(t, err)
	bobSide, err := SharedSecret(alicePub, bobPriv)
	require.NoError(t, err)

	assert.Equal(t, aliceSide, bobSide)
	assert.Len(t, aliceSide, 32)
}

func TestParsePublicKeyHexAccepts0xPrefix(t *testing.T) {
	pubHex, err := PublicKeyHexFromPrivate(alicePriv)
	require.NoError(t, err)

	withPrefix, err := ParsePublicKeyHex("0x" + pubHex)
	require.NoError(t, err)
	plain, err := ParsePublicKeyHex(pubHex)
	require.NoError(t, err)
	assert.True(t, withPrefix.Equal(plain))
}
