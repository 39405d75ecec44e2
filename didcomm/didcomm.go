// Package didcomm encrypts and decrypts DIDComm messages as flattened
// JWE JSON using ECDH-ES over secp256k1 with A256GCM content encryption.
// Each message uses a fresh ephemeral key; the ephemeral public key
// travels in the protected header.
package didcomm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	sdkcrypto "github.com/affinityproject/affinidi-core-sdk/common/crypto"
)

const gcmTagSize = 16

// Envelope is a flattened JWE JSON serialization.
type Envelope struct {
	Protected  string `json:"protected"`
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

type protectedHeader struct {
	Alg string `json:"alg"`
	Enc string `json:"enc"`
	Crv string `json:"crv"`
	Typ string `json:"typ"`
	Epk string `json:"epk"`
}

// Encrypt encrypts plaintext for the holder of recipientPubHex. A fresh
// ephemeral secp256k1 key is generated per message and its compressed
// public key is carried in the protected header.
func Encrypt(recipientPubHex string, plaintext []byte) (string, error) {
	ephemeral, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate ephemeral key: %w", err)
	}

	secret, err := sdkcrypto.SharedSecret(recipientPubHex, hex.EncodeToString(ephemeral.Serialize()))
	if err != nil {
		return "", fmt.Errorf("failed to derive shared secret: %w", err)
	}

	header := protectedHeader{
		Alg: "ECDH-ES",
		Enc: "A256GCM",
		Crv: "secp256k1",
		Typ: "application/didcomm-encrypted+json",
		Epk: hex.EncodeToString(ephemeral.PubKey().SerializeCompressed()),
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	protected := base64.RawURLEncoding.EncodeToString(headerBytes)

	iv, sealed, err := sealAESGCM(secret, plaintext, []byte(protected))
	if err != nil {
		return "", err
	}

	// gcm.Seal appends the tag to the ciphertext; JWE carries it separately.
	ciphertext := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	env := Envelope{
		Protected:  protected,
		IV:         base64.RawURLEncoding.EncodeToString(iv),
		Ciphertext: base64.RawURLEncoding.EncodeToString(ciphertext),
		Tag:        base64.RawURLEncoding.EncodeToString(tag),
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Decrypt opens a flattened JWE produced by Encrypt using the recipient's
// private key.
func Decrypt(message, recipientPrivHex string) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(message), &env); err != nil {
		return nil, fmt.Errorf("invalid JWE message: %w", err)
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(env.Protected)
	if err != nil {
		return nil, fmt.Errorf("invalid protected header encoding: %w", err)
	}
	var header protectedHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("invalid protected header: %w", err)
	}
	if header.Enc != "A256GCM" {
		return nil, fmt.Errorf("unsupported content encryption %q", header.Enc)
	}
	if header.Epk == "" {
		return nil, fmt.Errorf("protected header has no ephemeral public key")
	}

	secret, err := sdkcrypto.SharedSecret(header.Epk, recipientPrivHex)
	if err != nil {
		return nil, fmt.Errorf("failed to derive shared secret: %w", err)
	}

	iv, err := base64.RawURLEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv encoding: %w", err)
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	tag, err := base64.RawURLEncoding.DecodeString(env.Tag)
	if err != nil {
		return nil, fmt.Errorf("invalid tag encoding: %w", err)
	}
	if len(tag) != gcmTagSize {
		return nil, fmt.Errorf("invalid tag length %d", len(tag))
	}

	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), []byte(env.Protected))
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

func sealAESGCM(key, plaintext, aad []byte) (iv, sealed []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	iv = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, err
	}

	return iv, gcm.Seal(nil, iv, plaintext, aad), nil
}
