// Package verifier is the client for the remote verifier interaction
// builder: it turns credential requirements into the canonical unsigned
// share-request payload.
package verifier

import (
	"context"

	"github.com/affinityproject/affinidi-core-sdk/services"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// Client calls the verifier API.
type Client struct {
	api *services.Client
}

// NewClient creates a verifier API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{api: services.NewClient("verifier", baseURL, apiKey)}
}

// BuildShareRequestParams are the inputs to BuildShareRequest. An empty
// CredentialRequirements slice requests DID-auth only.
type BuildShareRequestParams struct {
	CredentialRequirements []vc.Requirement `json:"credentialRequirements"`
	IssuerDid              string           `json:"issuerDid,omitempty"`
	Audience               string           `json:"audienceDid,omitempty"`
	ExpiresAt              string           `json:"expiresAt,omitempty"`
	Nonce                  string           `json:"nonce,omitempty"`
	CallbackURL            string           `json:"callbackUrl,omitempty"`
}

// BuildShareRequest returns the canonical unsigned interaction payload for
// a credential share request.
func (c *Client) BuildShareRequest(ctx context.Context, params BuildShareRequestParams) (map[string]interface{}, error) {
	var resp struct {
		UnsignedCredentialRequest map[string]interface{} `json:"unsignedCredentialRequest"`
	}

	err := c.api.Post(ctx, "BuildShareRequest", "/interactions/credential-share-request", params, &resp, nil)
	if err != nil {
		return nil, err
	}
	return resp.UnsignedCredentialRequest, nil
}
