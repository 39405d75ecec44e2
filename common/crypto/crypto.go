package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"
)

// ECDSASign signs a 32-byte digest using secp256k1, producing a 65-byte
// [r, s, v] signature.
func ECDSASign(digest []byte, hexPrivateKey string) ([]byte, error) {
	privKey, err := crypto.HexToECDSA(hexPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: invalid private key: %w", err)
	}

	signature, err := crypto.Sign(digest, privKey)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sign error: %w", err)
	}

	if len(signature) != 65 {
		return nil, errors.New("ecdsa: invalid signature length, expected 65 bytes")
	}

	return signature, nil
}

// ECDSAVerifySignature verifies a hex-encoded secp256k1 signature over a
// 32-byte digest. Accepts 64-byte [r, s] and 65-byte [r, s, v] signatures,
// and compressed or uncompressed public keys.
func ECDSAVerifySignature(publicKeyHex, signatureHex string, digest []byte) (bool, error) {
	pubKey, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return false, err
	}

	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}

	var rsBytes []byte
	switch len(sigBytes) {
	case 65:
		rsBytes = sigBytes[:64]
	case 64:
		rsBytes = sigBytes
	default:
		return false, fmt.Errorf("invalid signature length: got %d, want 64 or 65 bytes", len(sigBytes))
	}

	r := new(big.Int).SetBytes(rsBytes[:32])
	s := new(big.Int).SetBytes(rsBytes[32:])

	return ecdsa.Verify(pubKey, digest, r, s), nil
}

// ParsePublicKeyHex parses a hex-encoded secp256k1 public key in
// compressed (33-byte) or uncompressed (65-byte) form.
func ParsePublicKeyHex(publicKeyHex string) (*ecdsa.PublicKey, error) {
	pubKeyBytes, err := hex.DecodeString(trim0x(publicKeyHex))
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(pubKeyBytes) == 0 {
		return nil, errors.New("public key is empty")
	}

	if len(pubKeyBytes) == 33 && (pubKeyBytes[0] == 0x02 || pubKeyBytes[0] == 0x03) {
		pubKeyParsed, err := btcec.ParsePubKey(pubKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse compressed public key: %w", err)
		}
		pubKeyBytes = pubKeyParsed.SerializeUncompressed()
	}

	pubKey, err := crypto.UnmarshalPubkey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return pubKey, nil
}

// PublicKeyHexFromPrivate derives the compressed public key for a
// hex-encoded private key.
func PublicKeyHexFromPrivate(hexPrivateKey string) (string, error) {
	privKey, err := crypto.HexToECDSA(hexPrivateKey)
	if err != nil {
		return "", fmt.Errorf("ecdsa: invalid private key: %w", err)
	}
	return hex.EncodeToString(crypto.CompressPubkey(&privKey.PublicKey)), nil
}

// VerifyKeyPairFromHex reports whether a hex private key and hex public key
// belong to the same key pair.
func VerifyKeyPairFromHex(privateKeyHex, publicKeyHex string) (bool, error) {
	privKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return false, fmt.Errorf("failed to convert private key hex: %w", err)
	}

	pubKey, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return false, err
	}

	derived := crypto.CompressPubkey(&privKey.PublicKey)
	given := crypto.CompressPubkey(pubKey)

	return bytes.Equal(derived, given), nil
}

// Digest computes the SHA-256 digest of the given data.
func Digest(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
