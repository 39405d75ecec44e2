// Package presentation builds and verifies W3C verifiable presentations
// bound to a challenge/domain pair for replay protection.
package presentation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/common/provider"
	"github.com/affinityproject/affinidi-core-sdk/common/token"
	"github.com/affinityproject/affinidi-core-sdk/exchange"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// CredentialsContextURI is the base W3C credentials context.
const CredentialsContextURI = "https://www.w3.org/2018/credentials/v1"

// Prover supplies the wallet identity's signing capabilities: compact
// token signing and embedded document proofs.
type Prover interface {
	Did() string
	KeyID() string
	SignToken(payload token.Payload, opts ...token.SignOpt) (string, error)
	ProveDocument(doc *jsonmap.JSONMap, proofPurpose, challenge, domain string) error
}

// Engine builds presentation challenges, wraps credentials into signed
// presentations, and verifies received presentations.
type Engine struct {
	prover      Prover
	resolver    provider.KeyResolver
	verifierAPI exchange.VerifierService
	now         func() time.Time
}

// Opt configures an Engine.
type Opt func(*Engine)

// WithClock overrides the time source, for expiry checks in tests.
func WithClock(now func() time.Time) Opt {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a presentation engine for one wallet identity.
func NewEngine(prover Prover, resolver provider.KeyResolver, verifierAPI exchange.VerifierService, opts ...Opt) *Engine {
	e := &Engine{
		prover:      prover,
		resolver:    resolver,
		verifierAPI: verifierAPI,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateChallenge builds and signs a presentation challenge: the same
// contract as a share request, but signed without a key-identifier
// association for broader compatibility.
func (e *Engine) GenerateChallenge(ctx context.Context, requirements []vc.Requirement, issuerDid string, opts ...exchange.RequestOpt) (string, error) {
	params := exchange.ShareRequestParams(requirements, issuerDid, opts)

	payload, err := e.verifierAPI.BuildShareRequest(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to build challenge payload: %w", err)
	}

	tokenPayload := token.Payload{
		Typ:         token.TypeCredentialShareRequest,
		Aud:         params.Audience,
		Jti:         params.Nonce,
		Iat:         e.now().Unix(),
		Interaction: payload,
	}
	if params.ExpiresAt != "" {
		exp, err := time.Parse(time.RFC3339, params.ExpiresAt)
		if err != nil {
			return "", fmt.Errorf("invalid expiry: %w", err)
		}
		tokenPayload.Exp = exp.Unix()
	}

	signed, err := e.prover.SignToken(tokenPayload, token.WithoutKeyID())
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge: %w", err)
	}
	return signed, nil
}

// CreateFromChallenge wraps the given credentials into a signed
// presentation bound to the challenge and domain.
//
// Credentials whose specific type is not among the challenge's requested
// types are silently dropped; this deliberately differs from the share
// response flow, which fails hard when nothing matches.
func (e *Engine) CreateFromChallenge(_ context.Context, challengeToken string, creds []vc.Credential, domain string) (jsonmap.JSONMap, error) {
	challenge, err := token.Decode(challengeToken)
	if err != nil {
		return nil, err
	}

	requirements, err := challengeRequirements(challenge)
	if err != nil {
		return nil, err
	}

	selected := filterBySpecificType(creds, requirements)

	credentialDocs := make([]interface{}, 0, len(selected))
	for i := range selected {
		doc, err := selected[i].ToJSONMap()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize credential %q: %w", selected[i].ID, err)
		}
		credentialDocs = append(credentialDocs, doc)
	}

	vp := jsonmap.JSONMap{
		"@context": []interface{}{CredentialsContextURI},
		"id":       "urn:uuid:" + uuid.NewString(),
		"type":     []interface{}{"VerifiablePresentation"},
		"holder":   map[string]interface{}{"id": e.prover.Did()},
	}
	if len(credentialDocs) > 0 {
		vp["verifiableCredential"] = credentialDocs
	}

	if err := e.prover.ProveDocument(&vp, "authentication", challenge.Raw, domain); err != nil {
		return nil, fmt.Errorf("failed to sign presentation: %w", err)
	}

	return vp, nil
}

func challengeRequirements(challenge *token.Token) ([]vc.Requirement, error) {
	raw, ok := challenge.Payload.Interaction["credentialRequirements"]
	if !ok || raw == nil {
		return nil, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, &token.DecodeError{Cause: fmt.Errorf("invalid credentialRequirements: got %T", raw)}
	}

	requirements := make([]vc.Requirement, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		var req vc.Requirement
		if types, ok := m["type"].([]interface{}); ok {
			for _, t := range types {
				if s, ok := t.(string); ok {
					req.Type = append(req.Type, s)
				}
			}
		}
		requirements = append(requirements, req)
	}
	return requirements, nil
}

// filterBySpecificType keeps credentials whose specific type tag appears
// among the requested types. Zero requirements keep everything.
func filterBySpecificType(creds []vc.Credential, requirements []vc.Requirement) []vc.Credential {
	if len(requirements) == 0 {
		return creds
	}

	requested := make(map[string]bool)
	for _, req := range requirements {
		if len(req.Type) > 0 {
			requested[req.Type[len(req.Type)-1]] = true
		}
	}

	selected := make([]vc.Credential, 0, len(creds))
	for _, c := range creds {
		if requested[c.SpecificType()] {
			selected = append(selected, c)
		}
	}
	return selected
}
