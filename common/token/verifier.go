package token

import (
	"encoding/base64"
	"fmt"

	"github.com/affinityproject/affinidi-core-sdk/common/crypto"
	"github.com/affinityproject/affinidi-core-sdk/common/provider"
)

// Verifier checks interaction token signatures against the signer's
// current DID document keys.
type Verifier struct {
	resolver provider.KeyResolver
}

// NewVerifier creates a verifier backed by the given key resolver.
func NewVerifier(resolver provider.KeyResolver) *Verifier {
	return &Verifier{resolver: resolver}
}

// Verify checks the token's signature and returns the signer's DID.
// The key is located through the kid header when present, falling back to
// the issuer DID's default verification method.
func (v *Verifier) Verify(raw string) (string, error) {
	t, err := Decode(raw)
	if err != nil {
		return "", err
	}
	return v.VerifyDecoded(t)
}

// VerifyDecoded checks the signature of an already-decoded token.
func (v *Verifier) VerifyDecoded(t *Token) (string, error) {
	keyRef, _ := t.Header["kid"].(string)
	if keyRef == "" {
		keyRef = t.Payload.Iss
	}
	if keyRef == "" {
		return "", fmt.Errorf("token has neither kid header nor iss claim")
	}

	publicKeyHex, err := v.resolver.ResolvePublicKey(keyRef)
	if err != nil {
		return "", fmt.Errorf("failed to resolve public key: %w", err)
	}

	publicKey, err := crypto.ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid public key: %w", err)
	}

	signature, err := base64.RawURLEncoding.DecodeString(t.Signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature encoding: %w", err)
	}

	if err := ES256K.Verify(t.SigningInput(), signature, publicKey); err != nil {
		return "", err
	}

	return t.Payload.Iss, nil
}
