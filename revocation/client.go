package revocation

import (
	"context"

	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/services"
)

// HTTPStore talks to the revocation backend over HTTP. It satisfies Store.
type HTTPStore struct {
	api *services.Client
}

// NewHTTPStore builds an HTTPStore against the given revocation service URL.
func NewHTTPStore(baseURL, apiKey string) *HTTPStore {
	return &HTTPStore{api: services.NewClient("revocation", baseURL, apiKey)}
}

func authHeaders(accessToken string) map[string]string {
	if accessToken == "" {
		return nil
	}
	return map[string]string{"Authorization": accessToken}
}

// BuildStatus asks the backend to allocate or reuse a list index.
func (s *HTTPStore) BuildStatus(ctx context.Context, params BuildStatusParams, accessToken string) (*BuildStatusResponse, error) {
	var resp BuildStatusResponse
	err := s.api.Post(ctx, "BuildStatus", "/revocation/build-revocation-list-2020-status", params, &resp, authHeaders(accessToken))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Revoke flips the stored status for the credential.
func (s *HTTPStore) Revoke(ctx context.Context, params RevokeParams, accessToken string) (*RevokeResponse, error) {
	var resp RevokeResponse
	err := s.api.Post(ctx, "Revoke", "/revocation/revoke-credential", params, &resp, authHeaders(accessToken))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PublishList uploads the signed list credential.
func (s *HTTPStore) PublishList(ctx context.Context, listCredential jsonmap.JSONMap, accessToken string) error {
	body := map[string]interface{}{"revocationListCredential": listCredential}
	return s.api.Post(ctx, "PublishList", "/revocation/publish-revocation-list-credential", body, nil, authHeaders(accessToken))
}
