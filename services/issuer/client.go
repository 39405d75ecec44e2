// Package issuer is the client for the remote issuer interaction builder:
// it turns structured offer parameters into the canonical unsigned offer
// payload, and verifies offer responses server-side.
package issuer

import (
	"context"

	"github.com/affinityproject/affinidi-core-sdk/services"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// Client calls the issuer API.
type Client struct {
	api *services.Client
}

// NewClient creates an issuer API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{api: services.NewClient("issuer", baseURL, apiKey)}
}

// BuildOfferParams are the inputs to BuildOffer.
type BuildOfferParams struct {
	OfferedCredentials []vc.OfferedCredential `json:"offeredCredentials"`
	Audience           string                 `json:"audienceDid,omitempty"`
	ExpiresAt          string                 `json:"expiresAt,omitempty"`
	Nonce              string                 `json:"nonce,omitempty"`
	CallbackURL        string                 `json:"callbackUrl,omitempty"`
}

// BuildOffer returns the canonical unsigned interaction payload for a
// credential offer.
func (c *Client) BuildOffer(ctx context.Context, params BuildOfferParams) (map[string]interface{}, error) {
	var resp struct {
		UnsignedCredentialOffer map[string]interface{} `json:"unsignedCredentialOffer"`
	}

	err := c.api.Post(ctx, "BuildOffer", "/interactions/credential-offer", params, &resp, nil)
	if err != nil {
		return nil, err
	}
	return resp.UnsignedCredentialOffer, nil
}

// VerifyOfferResponseParams are the inputs to VerifyOfferResponse.
type VerifyOfferResponseParams struct {
	CredentialOfferResponseToken string `json:"credentialOfferResponseToken"`
	CredentialOfferRequestToken  string `json:"credentialOfferRequestToken,omitempty"`
}

// OfferVerifyResult is the issuer API's verdict on an offer response.
type OfferVerifyResult struct {
	IsValid             bool                   `json:"isValid"`
	Issuer              string                 `json:"issuer"`
	Jti                 string                 `json:"jti"`
	SelectedCredentials []vc.OfferedCredential `json:"selectedCredentials"`
	Errors              []string               `json:"errors"`
}

// VerifyOfferResponse verifies an offer response token server-side,
// matching it against the request token when one is supplied.
func (c *Client) VerifyOfferResponse(ctx context.Context, params VerifyOfferResponseParams) (*OfferVerifyResult, error) {
	var resp OfferVerifyResult

	err := c.api.Post(ctx, "VerifyOfferResponse", "/verifier/verify-offer-response", params, &resp, nil)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
