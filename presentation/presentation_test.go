package presentation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affinityproject/affinidi-core-sdk/common/crypto"
	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/common/provider"
	"github.com/affinityproject/affinidi-core-sdk/common/token"
	"github.com/affinityproject/affinidi-core-sdk/exchange"
	verifierapi "github.com/affinityproject/affinidi-core-sdk/services/verifier"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

const (
	verifierPrivKey = "1111111111111111111111111111111111111111111111111111111111111111"
	verifierDid     = "did:elem:verifier"
	holderPrivKey   = "2222222222222222222222222222222222222222222222222222222222222222"
	holderDid       = "did:elem:holder"
	issuerDid       = "did:elem:issuer"
)

type testProver struct {
	signer  *token.Signer
	privKey string
}

func newTestProver(did, privKey string) *testProver {
	return &testProver{signer: token.NewSigner(privKey, did), privKey: privKey}
}

func (p *testProver) Did() string   { return p.signer.Did() }
func (p *testProver) KeyID() string { return p.signer.KeyID() }

func (p *testProver) SignToken(payload token.Payload, opts ...token.SignOpt) (string, error) {
	return p.signer.SignToken(payload, opts...)
}

func (p *testProver) ProveDocument(doc *jsonmap.JSONMap, proofPurpose, challenge, domain string) error {
	return doc.AddECDSAProof(p.privKey, p.KeyID(), proofPurpose, challenge, domain)
}

type fakeVerifierService struct{}

func (fakeVerifierService) BuildShareRequest(_ context.Context, params verifierapi.BuildShareRequestParams) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"credentialRequirements": params.CredentialRequirements,
	}
	if params.IssuerDid != "" {
		payload["issuerDid"] = params.IssuerDid
	}
	return payload, nil
}

func testKeyResolver(t *testing.T) provider.KeyResolver {
	t.Helper()
	keys := map[string]string{}
	for did, priv := range map[string]string{verifierDid: verifierPrivKey, holderDid: holderPrivKey} {
		pub, err := crypto.PublicKeyHexFromPrivate(priv)
		require.NoError(t, err)
		keys[did] = pub
	}
	return provider.KeyResolverFunc(func(verificationMethod string) (string, error) {
		did := strings.SplitN(verificationMethod, "#", 2)[0]
		pub, ok := keys[did]
		if !ok {
			return "", errors.New("unknown did")
		}
		return pub, nil
	})
}

func newEngines(t *testing.T, opts ...Opt) (verifier, holder *Engine) {
	t.Helper()
	resolver := testKeyResolver(t)
	verifier = NewEngine(newTestProver(verifierDid, verifierPrivKey), resolver, fakeVerifierService{}, opts...)
	holder = NewEngine(newTestProver(holderDid, holderPrivKey), resolver, fakeVerifierService{})
	return verifier, holder
}

func sampleCredential(id, specificType string) vc.Credential {
	return vc.Credential{
		Context:      []interface{}{CredentialsContextURI},
		ID:           id,
		Type:         []string{"VerifiableCredential", specificType},
		Issuer:       vc.Issuer{ID: issuerDid},
		Holder:       &vc.Holder{ID: holderDid},
		IssuanceDate: "2024-01-01T00:00:00Z",
		CredentialSubject: map[string]interface{}{
			"id": holderDid,
		},
	}
}

func TestChallengeRoundTrip(t *testing.T) {
	verifier, holder := newEngines(t)
	ctx := context.Background()

	requirements := []vc.Requirement{{Type: []string{"VerifiableCredential", "NameCredential"}}}
	challenge, err := verifier.GenerateChallenge(ctx, requirements, issuerDid)
	require.NoError(t, err)

	// Challenges are signed without a key identifier.
	decoded, err := token.Decode(challenge)
	require.NoError(t, err)
	_, hasKid := decoded.Header["kid"]
	assert.False(t, hasKid)

	vp, err := holder.CreateFromChallenge(ctx, challenge,
		[]vc.Credential{sampleCredential("claimId:name", "NameCredential")}, "example.com")
	require.NoError(t, err)

	result := verifier.Verify(ctx, vp)
	require.Empty(t, result.Errors)
	assert.True(t, result.IsValid)
	assert.Equal(t, holderDid, result.Did)
	assert.Equal(t, decoded.Payload.Jti, result.Challenge)
	assert.NotNil(t, result.SuppliedPresentation)
}

func TestCreateFromChallengeDropsNonMatching(t *testing.T) {
	verifier, holder := newEngines(t)
	ctx := context.Background()

	requirements := []vc.Requirement{{Type: []string{"VerifiableCredential", "NameCredential"}}}
	challenge, err := verifier.GenerateChallenge(ctx, requirements, issuerDid)
	require.NoError(t, err)

	creds := []vc.Credential{
		sampleCredential("claimId:name", "NameCredential"),
		sampleCredential("claimId:email", "EmailCredential"),
	}
	vp, err := holder.CreateFromChallenge(ctx, challenge, creds, "example.com")
	require.NoError(t, err)

	embedded, ok := vp["verifiableCredential"].([]interface{})
	require.True(t, ok)
	require.Len(t, embedded, 1)
	first, ok := embedded[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "claimId:name", first["id"])
}

func TestVerifyRejectsExpiredChallenge(t *testing.T) {
	verifier, holder := newEngines(t)
	ctx := context.Background()

	challenge, err := verifier.GenerateChallenge(ctx, nil, issuerDid,
		exchange.WithExpiry(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	vp, err := holder.CreateFromChallenge(ctx, challenge, nil, "example.com")
	require.NoError(t, err)

	// A verifier whose clock is past the challenge expiry rejects it but
	// keeps the presentation for diagnostics.
	lateVerifier := NewEngine(newTestProver(verifierDid, verifierPrivKey), testKeyResolver(t),
		fakeVerifierService{}, WithClock(func() time.Time { return time.Now().Add(48 * time.Hour) }))

	result := lateVerifier.Verify(ctx, vp)
	assert.False(t, result.IsValid)
	assert.NotNil(t, result.SuppliedPresentation)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Error(), "expired")
}

func TestVerifyRejectsForeignChallenge(t *testing.T) {
	_, holder := newEngines(t)
	ctx := context.Background()

	// Challenge issued by the holder itself, not the verifying party.
	challenge, err := holder.GenerateChallenge(ctx, nil, issuerDid)
	require.NoError(t, err)
	vp, err := holder.CreateFromChallenge(ctx, challenge, nil, "example.com")
	require.NoError(t, err)

	verifier, _ := newEngines(t)
	result := verifier.Verify(ctx, vp)
	assert.False(t, result.IsValid)
	assert.NotNil(t, result.SuppliedPresentation)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Error(), "not this verifier")
}

func TestVerifyRejectsTamperedPresentation(t *testing.T) {
	verifier, holder := newEngines(t)
	ctx := context.Background()

	challenge, err := verifier.GenerateChallenge(ctx, nil, issuerDid)
	require.NoError(t, err)
	vp, err := holder.CreateFromChallenge(ctx, challenge, nil, "example.com")
	require.NoError(t, err)

	vp["holder"] = map[string]interface{}{"id": "did:elem:imposter"}

	result := verifier.Verify(ctx, vp)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)
}

func TestVerifyRejectsMalformedDocument(t *testing.T) {
	verifier, _ := newEngines(t)

	result := verifier.Verify(context.Background(), jsonmap.JSONMap{"type": "wrong"})
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)
}
