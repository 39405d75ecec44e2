// Package wallet is the top-level entry point of the SDK. A Wallet holds
// one DID key pair and wires the exchange, presentation, and revocation
// components against an environment's service endpoints. There is no
// global session state; access tokens are explicit call parameters.
package wallet

import (
	"fmt"

	"github.com/affinityproject/affinidi-core-sdk/common/crypto"
	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/common/provider"
	"github.com/affinityproject/affinidi-core-sdk/common/token"
	verificationmethod "github.com/affinityproject/affinidi-core-sdk/common/verification-method"
	"github.com/affinityproject/affinidi-core-sdk/config"
	"github.com/affinityproject/affinidi-core-sdk/didcomm"
	"github.com/affinityproject/affinidi-core-sdk/exchange"
	"github.com/affinityproject/affinidi-core-sdk/presentation"
	"github.com/affinityproject/affinidi-core-sdk/revocation"
	issuerapi "github.com/affinityproject/affinidi-core-sdk/services/issuer"
	verifierapi "github.com/affinityproject/affinidi-core-sdk/services/verifier"
)

// Wallet owns a DID key pair and the component clients built from it.
type Wallet struct {
	privKeyHex string
	signer     *token.Signer
	resolver   provider.KeyResolver

	Exchange     *exchange.Exchange
	Presentation *presentation.Engine
	Revocation   *revocation.Manager
}

// New builds a Wallet for the given DID and hex-encoded secp256k1 private
// key against the endpoints resolved from cfg.
func New(did, privKeyHex string, cfg *config.Config) (*Wallet, error) {
	if did == "" {
		return nil, fmt.Errorf("did is required")
	}
	if _, err := crypto.PublicKeyHexFromPrivate(privKeyHex); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	w := &Wallet{
		privKeyHex: privKeyHex,
		signer:     token.NewSigner(privKeyHex, did),
		resolver:   verificationmethod.NewResolver(cfg.RegistryURL),
	}

	verifier := token.NewVerifier(w.resolver)
	issuerAPI := issuerapi.NewClient(cfg.IssuerURL, cfg.APIKey)
	verifierAPI := verifierapi.NewClient(cfg.VerifierURL, cfg.APIKey)

	w.Exchange = exchange.New(w, verifier, issuerAPI, verifierAPI)
	w.Presentation = presentation.NewEngine(w, w.resolver, verifierAPI)
	w.Revocation = revocation.NewManager(revocation.NewHTTPStore(cfg.RevocationURL, cfg.APIKey), w)

	return w, nil
}

// Did returns the wallet's DID.
func (w *Wallet) Did() string { return w.signer.Did() }

// KeyID returns the wallet's verification method reference.
func (w *Wallet) KeyID() string { return w.signer.KeyID() }

// SignToken signs an interaction token payload with the wallet key.
func (w *Wallet) SignToken(payload token.Payload, opts ...token.SignOpt) (string, error) {
	return w.signer.SignToken(payload, opts...)
}

// ProveDocument attaches a data-integrity proof to a JSON-LD document
// using the wallet key.
func (w *Wallet) ProveDocument(doc *jsonmap.JSONMap, proofPurpose, challenge, domain string) error {
	return doc.AddECDSAProof(w.privKeyHex, w.KeyID(), proofPurpose, challenge, domain)
}

// EncryptForRecipient encrypts plaintext for the holder of the given
// hex-encoded public key as a DIDComm JWE message.
func (w *Wallet) EncryptForRecipient(recipientPubHex string, plaintext []byte) (string, error) {
	return didcomm.Encrypt(recipientPubHex, plaintext)
}

// DecryptOwn decrypts a DIDComm JWE message addressed to this wallet.
func (w *Wallet) DecryptOwn(message string) ([]byte, error) {
	return didcomm.Decrypt(message, w.privKeyHex)
}

// PublicKeyHex returns the wallet's compressed public key in hex.
func (w *Wallet) PublicKeyHex() (string, error) {
	return crypto.PublicKeyHexFromPrivate(w.privKeyHex)
}
