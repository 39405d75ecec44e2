// Package exchange implements the credential exchange protocol: building
// and signing the four interaction token types (credential offer
// request/response and credential share request/response) and verifying
// the two response types, including DID-auth as the zero-credential
// special case of share.
//
// Per exchange the conceptual state machine is
// Built -> Sent -> Received -> SignatureVerified -> ClaimsChecked ->
// Accepted|Rejected. No step retries automatically; a failed verification
// is terminal for that token instance.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/affinityproject/affinidi-core-sdk/common/token"
	issuerapi "github.com/affinityproject/affinidi-core-sdk/services/issuer"
	verifierapi "github.com/affinityproject/affinidi-core-sdk/services/verifier"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// TokenSigner signs interaction token payloads for the wallet identity.
type TokenSigner interface {
	Did() string
	KeyID() string
	SignToken(payload token.Payload, opts ...token.SignOpt) (string, error)
}

// TokenVerifier checks a token signature and returns the signer's DID.
type TokenVerifier interface {
	VerifyDecoded(t *token.Token) (string, error)
}

// IssuerService is the remote issuer interaction builder.
type IssuerService interface {
	BuildOffer(ctx context.Context, params issuerapi.BuildOfferParams) (map[string]interface{}, error)
	VerifyOfferResponse(ctx context.Context, params issuerapi.VerifyOfferResponseParams) (*issuerapi.OfferVerifyResult, error)
}

// VerifierService is the remote verifier interaction builder.
type VerifierService interface {
	BuildShareRequest(ctx context.Context, params verifierapi.BuildShareRequestParams) (map[string]interface{}, error)
}

// Exchange orchestrates build -> sign -> encode for outbound interaction
// tokens and decode -> verify-signature -> verify-claims for inbound ones.
type Exchange struct {
	signer      TokenSigner
	verifier    TokenVerifier
	issuerAPI   IssuerService
	verifierAPI VerifierService
	now         func() time.Time
}

// Opt configures an Exchange.
type Opt func(*Exchange)

// WithClock overrides the time source, for expiry checks in tests.
func WithClock(now func() time.Time) Opt {
	return func(e *Exchange) {
		e.now = now
	}
}

// New creates an Exchange for one wallet identity.
func New(signer TokenSigner, verifier TokenVerifier, issuerAPI IssuerService, verifierAPI VerifierService, opts ...Opt) *Exchange {
	e := &Exchange{
		signer:      signer,
		verifier:    verifier,
		issuerAPI:   issuerAPI,
		verifierAPI: verifierAPI,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateOfferRequestToken builds and signs a credential offer request.
func (e *Exchange) GenerateOfferRequestToken(ctx context.Context, offered []vc.OfferedCredential, opts ...RequestOpt) (string, error) {
	if err := validateOffered(offered); err != nil {
		return "", err
	}

	options := buildRequestOptions(opts)

	payload, err := e.issuerAPI.BuildOffer(ctx, issuerapi.BuildOfferParams{
		OfferedCredentials: offered,
		Audience:           options.audienceDid,
		ExpiresAt:          formatExpiry(options.expiresAt),
		Nonce:              options.nonce,
		CallbackURL:        options.callbackURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build offer payload: %w", err)
	}

	return e.signRequest(token.TypeCredentialOfferRequest, payload, options)
}

// GenerateShareRequestToken builds and signs a credential share request.
// DID-auth is this operation called with zero requirements.
func (e *Exchange) GenerateShareRequestToken(ctx context.Context, requirements []vc.Requirement, issuerDid string, opts ...RequestOpt) (string, error) {
	options := buildRequestOptions(opts)

	payload, err := e.verifierAPI.BuildShareRequest(ctx, shareRequestParams(requirements, issuerDid, options))
	if err != nil {
		return "", fmt.Errorf("failed to build share request payload: %w", err)
	}

	return e.signRequest(token.TypeCredentialShareRequest, payload, options)
}

// ShareRequestParams resolves request options into the verifier builder's
// parameter set. The presentation engine shares this contract, a challenge
// being a share request signed without a key identifier.
func ShareRequestParams(requirements []vc.Requirement, issuerDid string, opts []RequestOpt) verifierapi.BuildShareRequestParams {
	return shareRequestParams(requirements, issuerDid, buildRequestOptions(opts))
}

func shareRequestParams(requirements []vc.Requirement, issuerDid string, options *requestOptions) verifierapi.BuildShareRequestParams {
	return verifierapi.BuildShareRequestParams{
		CredentialRequirements: requirements,
		IssuerDid:              issuerDid,
		Audience:               options.audienceDid,
		ExpiresAt:              formatExpiry(options.expiresAt),
		Nonce:                  options.nonce,
		CallbackURL:            options.callbackURL,
	}
}

// GenerateDidAuthRequestToken builds a DID-auth request: a share request
// with zero credential requirements.
func (e *Exchange) GenerateDidAuthRequestToken(ctx context.Context, audienceDid string, opts ...RequestOpt) (string, error) {
	opts = append(opts, WithAudience(audienceDid))
	return e.GenerateShareRequestToken(ctx, nil, "", opts...)
}

func (e *Exchange) signRequest(typ string, interaction map[string]interface{}, options *requestOptions) (string, error) {
	payload := token.Payload{
		Typ:         typ,
		Aud:         options.audienceDid,
		Jti:         options.nonce,
		Iat:         e.now().Unix(),
		Interaction: interaction,
	}
	if !options.expiresAt.IsZero() {
		payload.Exp = options.expiresAt.Unix()
	}

	signed, err := e.signer.SignToken(payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

func validateOffered(offered []vc.OfferedCredential) error {
	if len(offered) == 0 {
		return &ValidationError{Problems: []string{"offeredCredentials must not be empty"}}
	}

	var problems []string
	for i, oc := range offered {
		if oc.Type == "" {
			problems = append(problems, fmt.Sprintf("offeredCredentials[%d] is missing a type", i))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
