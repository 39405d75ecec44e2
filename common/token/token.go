// Package token encodes and decodes the signed interaction tokens the
// credential exchange protocol sends across the wire. A token is a compact
// JWT whose payload carries the standard claims plus a variant-specific
// interaction payload under the "interactionToken" claim.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Interaction token types.
const (
	TypeCredentialOfferRequest  = "credentialOfferRequest"
	TypeCredentialOfferResponse = "credentialOfferResponse"
	TypeCredentialShareRequest  = "credentialRequest"
	TypeCredentialShareResponse = "credentialResponse"
)

// Payload is the claim set of an interaction token.
type Payload struct {
	Iss         string                 `json:"iss,omitempty"`
	Aud         string                 `json:"aud,omitempty"`
	Jti         string                 `json:"jti,omitempty"`
	Iat         int64                  `json:"iat,omitempty"`
	Exp         int64                  `json:"exp,omitempty"`
	Typ         string                 `json:"typ,omitempty"`
	Interaction map[string]interface{} `json:"interactionToken,omitempty"`
}

// ExpiresAt returns the expiry as a time, or the zero time when unset.
func (p *Payload) ExpiresAt() time.Time {
	if p.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(p.Exp, 0)
}

// Expired reports whether the payload carries an expiry in the past.
func (p *Payload) Expired(now time.Time) bool {
	return p.Exp != 0 && now.After(p.ExpiresAt())
}

// Token is a decoded interaction token. Claims read from an unverified
// token must not be trusted until Verifier.Verify succeeds on Raw.
type Token struct {
	Raw       string
	Header    map[string]interface{}
	Payload   Payload
	Signature string
}

// SigningInput returns the "header.payload" part the signature covers.
func (t *Token) SigningInput() string {
	idx := strings.LastIndex(t.Raw, ".")
	if idx < 0 {
		return t.Raw
	}
	return t.Raw[:idx]
}

// DecodeError reports a token string that cannot be parsed into the
// expected structure.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode token: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Decode parses a compact token without verifying its signature.
func Decode(raw string) (*Token, error) {
	raw = strings.Trim(strings.TrimSpace(raw), "\"")

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, &DecodeError{Cause: fmt.Errorf("expected 3 token segments, got %d", len(parts))}
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, &DecodeError{Cause: fmt.Errorf("invalid header segment: %w", err)}
	}

	var header map[string]interface{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, &DecodeError{Cause: fmt.Errorf("invalid header JSON: %w", err)}
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, &DecodeError{Cause: fmt.Errorf("invalid payload segment: %w", err)}
	}

	var payload Payload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, &DecodeError{Cause: fmt.Errorf("invalid payload JSON: %w", err)}
	}

	return &Token{
		Raw:       raw,
		Header:    header,
		Payload:   payload,
		Signature: parts[2],
	}, nil
}
