package exchange

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/affinityproject/affinidi-core-sdk/common/token"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// CreateOfferResponseToken decodes a received offer request and signs a
// response accepting every offered credential type.
func (e *Exchange) CreateOfferResponseToken(_ context.Context, offerToken string) (string, error) {
	offer, err := token.Decode(offerToken)
	if err != nil {
		return "", err
	}

	selected, err := offeredFromInteraction(offer.Payload.Interaction)
	if err != nil {
		return "", err
	}

	interaction := map[string]interface{}{
		"selectedCredentials": selected,
	}
	if cb, ok := offer.Payload.Interaction["callbackURL"].(string); ok && cb != "" {
		interaction["callbackURL"] = cb
	}

	payload := token.Payload{
		Typ:         token.TypeCredentialOfferResponse,
		Aud:         offer.Payload.Iss,
		Jti:         offer.Payload.Jti,
		Iat:         e.now().Unix(),
		Exp:         offer.Payload.Exp,
		Interaction: interaction,
	}

	signed, err := e.signer.SignToken(payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign offer response: %w", err)
	}
	return signed, nil
}

// CreateShareResponseToken decodes a received share request, validates and
// filters the supplied credentials, and signs a response containing those
// that satisfy the request.
//
// Every structurally invalid credential is reported in one ValidationError.
// When filtering leaves zero credentials the call fails with
// NoMatchingCredentialsError rather than sending an empty response.
func (e *Exchange) CreateShareResponseToken(_ context.Context, shareRequestToken string, supplied []vc.Credential) (string, error) {
	request, err := token.Decode(shareRequestToken)
	if err != nil {
		return "", err
	}

	if err := vc.ValidateAll(supplied); err != nil {
		return "", err
	}

	requirements, err := requirementsFromInteraction(request.Payload.Interaction)
	if err != nil {
		return "", err
	}

	matched := vc.FilterByRequirements(supplied, requirements)
	if len(matched) == 0 && len(requirements) > 0 {
		return "", &NoMatchingCredentialsError{Requirements: requirements}
	}

	interaction := map[string]interface{}{
		"suppliedCredentials": matched,
	}
	if cb, ok := request.Payload.Interaction["callbackURL"].(string); ok && cb != "" {
		interaction["callbackURL"] = cb
	}

	payload := token.Payload{
		Typ:         token.TypeCredentialShareResponse,
		Aud:         request.Payload.Iss,
		Jti:         request.Payload.Jti,
		Iat:         e.now().Unix(),
		Exp:         request.Payload.Exp,
		Interaction: interaction,
	}

	signed, err := e.signer.SignToken(payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign share response: %w", err)
	}
	return signed, nil
}

// CreateDidAuthResponseToken responds to a DID-auth request: a share
// response carrying zero credentials, proving only control of the DID.
func (e *Exchange) CreateDidAuthResponseToken(ctx context.Context, didAuthRequestToken string) (string, error) {
	return e.CreateShareResponseToken(ctx, didAuthRequestToken, nil)
}

func offeredFromInteraction(interaction map[string]interface{}) ([]vc.OfferedCredential, error) {
	raw, ok := interaction["offeredCredentials"]
	if !ok {
		return nil, &token.DecodeError{Cause: fmt.Errorf("offer payload has no offeredCredentials")}
	}

	var offered []vc.OfferedCredential
	if err := remarshal(raw, &offered); err != nil {
		return nil, &token.DecodeError{Cause: fmt.Errorf("invalid offeredCredentials: %w", err)}
	}
	return offered, nil
}

func requirementsFromInteraction(interaction map[string]interface{}) ([]vc.Requirement, error) {
	raw, ok := interaction["credentialRequirements"]
	if !ok || raw == nil {
		return nil, nil
	}

	var requirements []vc.Requirement
	if err := remarshal(raw, &requirements); err != nil {
		return nil, &token.DecodeError{Cause: fmt.Errorf("invalid credentialRequirements: %w", err)}
	}
	return requirements, nil
}

func suppliedFromInteraction(interaction map[string]interface{}) ([]vc.Credential, error) {
	raw, ok := interaction["suppliedCredentials"]
	if !ok || raw == nil {
		return nil, nil
	}

	var supplied []vc.Credential
	if err := remarshal(raw, &supplied); err != nil {
		return nil, &token.DecodeError{Cause: fmt.Errorf("invalid suppliedCredentials: %w", err)}
	}
	return supplied, nil
}

func remarshal(from, to interface{}) error {
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}
