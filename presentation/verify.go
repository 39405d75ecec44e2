package presentation

import (
	"context"
	"fmt"

	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/common/token"
)

// Result is the outcome of verifying a presentation. SuppliedPresentation
// stays populated on a phase-2 (challenge freshness) failure so callers
// can diagnose an otherwise structurally valid presentation.
type Result struct {
	IsValid              bool
	Did                  string
	Challenge            string
	SuppliedPresentation jsonmap.JSONMap
	Errors               []error
}

// Verify checks a presentation in two phases: structural and cryptographic
// validation of the presentation itself, then freshness of the embedded
// challenge relative to this engine's own DID. A phase-2 failure
// downgrades the result to invalid while keeping the presentation for
// diagnostics.
func (e *Engine) Verify(_ context.Context, vp jsonmap.JSONMap) Result {
	var result Result

	// Phase 1: structure and proof.
	if err := checkStructure(vp); err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	valid, err := vp.VerifyECDSA(e.resolver)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("presentation proof verification failed: %w", err))
		return result
	}
	if !valid {
		result.Errors = append(result.Errors, fmt.Errorf("presentation proof signature is invalid"))
		return result
	}

	holder := vpHolderDid(vp)

	// Phase 2: the embedded challenge must decode and still hold for this
	// verifier.
	proof, err := vp.Proof()
	if err != nil {
		result.SuppliedPresentation = vp
		result.Errors = append(result.Errors, fmt.Errorf("failed to read presentation proof: %w", err))
		return result
	}

	challenge, err := token.Decode(proof.Challenge)
	if err != nil {
		result.SuppliedPresentation = vp
		result.Errors = append(result.Errors, fmt.Errorf("challenge token is not decodable: %w", err))
		return result
	}

	if challenge.Payload.Iss != e.prover.Did() {
		result.SuppliedPresentation = vp
		result.Errors = append(result.Errors,
			fmt.Errorf("challenge was issued by %q, not this verifier", challenge.Payload.Iss))
		return result
	}

	if challenge.Payload.Expired(e.now()) {
		result.SuppliedPresentation = vp
		result.Errors = append(result.Errors, fmt.Errorf("challenge token expired"))
		return result
	}

	result.IsValid = true
	result.Did = holder
	result.Challenge = challenge.Payload.Jti
	result.SuppliedPresentation = vp
	return result
}

func checkStructure(vp jsonmap.JSONMap) error {
	if vp == nil {
		return fmt.Errorf("presentation is nil")
	}

	types, ok := vp["type"].([]interface{})
	if !ok {
		return fmt.Errorf("presentation has no type field")
	}
	found := false
	for _, t := range types {
		if s, ok := t.(string); ok && s == "VerifiablePresentation" {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("presentation type must include VerifiablePresentation")
	}

	if vpHolderDid(vp) == "" {
		return fmt.Errorf("presentation has no holder id")
	}
	return nil
}

func vpHolderDid(vp jsonmap.JSONMap) string {
	switch holder := vp["holder"].(type) {
	case string:
		return holder
	case map[string]interface{}:
		if id, ok := holder["id"].(string); ok {
			return id
		}
	}
	return ""
}
