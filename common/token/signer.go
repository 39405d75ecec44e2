package token

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs interaction token payloads on behalf of a wallet identity.
type Signer struct {
	privKeyHex string
	did        string
	keyID      string
}

// NewSigner creates a signer for the given hex private key and DID.
func NewSigner(privKeyHex, did string) *Signer {
	return &Signer{
		privKeyHex: privKeyHex,
		did:        did,
		keyID:      fmt.Sprintf("%s#%s", did, "key-1"),
	}
}

// Did returns the signer's DID.
func (s *Signer) Did() string { return s.did }

// KeyID returns the verification method URL for this signer's key.
func (s *Signer) KeyID() string { return s.keyID }

// SignOpt configures token signing.
type SignOpt func(*signOptions)

type signOptions struct {
	omitKeyID bool
}

// WithoutKeyID omits the kid header from the signed token. Used for
// presentation challenges, where the token must verify against any of the
// issuer DID's keys rather than one fixed key reference.
func WithoutKeyID() SignOpt {
	return func(o *signOptions) {
		o.omitKeyID = true
	}
}

// SignToken signs a payload and returns the compact token string.
func (s *Signer) SignToken(payload Payload, opts ...SignOpt) (string, error) {
	options := &signOptions{}
	for _, opt := range opts {
		opt(options)
	}

	jwt.RegisterSigningMethod(ES256K.Alg(), func() jwt.SigningMethod {
		return ES256K
	})

	if payload.Iss == "" {
		payload.Iss = s.did
	}

	claims, err := payloadClaims(payload)
	if err != nil {
		return "", fmt.Errorf("failed to build claims: %w", err)
	}

	t := jwt.NewWithClaims(ES256K, claims)
	t.Header["typ"] = "JWT"
	if !options.omitKeyID {
		t.Header["kid"] = s.keyID
	}

	signed, err := t.SignedString(s.privKeyHex)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// payloadClaims converts a Payload into a jwt.MapClaims via JSON so the
// wire claim names stay in one place.
func payloadClaims(payload Payload) (jwt.MapClaims, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}
