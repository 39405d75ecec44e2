package jsonmap

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/affinityproject/affinidi-core-sdk/common/crypto"
	"github.com/affinityproject/affinidi-core-sdk/common/dto"
	"github.com/affinityproject/affinidi-core-sdk/common/processor"
	"github.com/affinityproject/affinidi-core-sdk/common/provider"
	"github.com/affinityproject/affinidi-core-sdk/common/util"
)

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

// ToJSON serializes the JSONMap to JSON.
func (m *JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := jsonMarshal(*m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}
	return data, nil
}

// Canonicalize canonicalizes the JSONMap for signing or verification,
// excluding the proof field, and returns the SHA-256 digest of the
// canonical form.
func (m *JSONMap) Canonicalize() ([]byte, error) {
	mCopy := make(map[string]interface{}, len(*m))
	for k, v := range *m {
		if k != "proof" {
			mCopy[k] = v
		}
	}

	// Round-trip through JSON so nested typed values become plain maps.
	encoded, err := jsonMarshal(mCopy)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap copy: %w", err)
	}

	doc, err := jsonUnmarshalMap(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSONMap copy: %w", err)
	}

	canonicalDoc, err := processor.CanonicalizeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	return processor.ComputeDigest(canonicalDoc), nil
}

// AddECDSAProof signs the canonicalized JSONMap with the given private key
// and attaches a DataIntegrityProof. Challenge and domain, when non-empty,
// bind the proof for replay protection.
func (m *JSONMap) AddECDSAProof(priv, verificationMethod, proofPurpose, challenge, domain string) error {
	if m == nil {
		return fmt.Errorf("JSONMap is nil")
	}
	if verificationMethod == "" {
		return fmt.Errorf("verification method is required")
	}
	if proofPurpose == "" {
		return fmt.Errorf("proof purpose is required")
	}

	proof := &dto.Proof{
		Type:               "DataIntegrityProof",
		Created:            time.Now().UTC().Format(time.RFC3339),
		VerificationMethod: verificationMethod,
		ProofPurpose:       proofPurpose,
		Cryptosuite:        "ecdsa-rdfc-2019",
		Challenge:          challenge,
		Domain:             domain,
	}

	signData, err := m.Canonicalize()
	if err != nil {
		return fmt.Errorf("failed to canonicalize JSONMap: %w", err)
	}

	signature, err := crypto.ECDSASign(signData, priv)
	if err != nil {
		return fmt.Errorf("failed to sign ECDSA proof: %w", err)
	}
	proof.ProofValue = hex.EncodeToString(signature)
	(*m)["proof"] = util.SerializeProofs([]dto.Proof{*proof})
	return nil
}

// Proof returns the first proof attached to the JSONMap.
func (m *JSONMap) Proof() (dto.Proof, error) {
	raw, err := m.rawProof()
	if err != nil {
		return dto.Proof{}, err
	}

	proofMap, ok := raw.(map[string]interface{})
	if !ok {
		return dto.Proof{}, fmt.Errorf("invalid proof format: expected map[string]interface{}, got %T", raw)
	}

	return util.ParseProof(proofMap)
}

// VerifyECDSA verifies the attached DataIntegrityProof against the public
// key the resolver returns for the proof's verification method.
func (m *JSONMap) VerifyECDSA(resolver provider.KeyResolver) (bool, error) {
	if m == nil {
		return false, fmt.Errorf("JSONMap is nil")
	}

	proof, err := m.Proof()
	if err != nil {
		return false, fmt.Errorf("failed to parse proof: %w", err)
	}

	doc, err := m.Canonicalize()
	if err != nil {
		return false, fmt.Errorf("failed to canonicalize JSONMap: %w", err)
	}

	publicKey, err := resolver.ResolvePublicKey(proof.VerificationMethod)
	if err != nil {
		return false, fmt.Errorf("failed to resolve public key: %w", err)
	}

	return crypto.ECDSAVerifySignature(publicKey, proof.ProofValue, doc)
}

func (m *JSONMap) rawProof() (interface{}, error) {
	raw, exists := (*m)["proof"]
	if !exists {
		return nil, fmt.Errorf("JSONMap has no proof")
	}

	if proofs, ok := raw.([]interface{}); ok {
		if len(proofs) == 0 {
			return nil, fmt.Errorf("JSONMap has no proof")
		}
		return proofs[0], nil
	}
	return raw, nil
}
