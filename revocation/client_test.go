package revocation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/services"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

func TestHTTPStoreBuildStatus(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(BuildStatusResponse{
			CredentialStatus: vc.Status{
				Type:                "RevocationList2020Status",
				RevocationListIndex: "3",
			},
			IsPublishRequired: true,
			RevocationList:    jsonmap.JSONMap{"id": "https://revocation.example.com/list/1"},
		})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "api-key")
	resp, err := store.BuildStatus(context.Background(),
		BuildStatusParams{CredentialID: "claimId:abc", SubjectDid: "did:elem:holder"}, "access-token")
	require.NoError(t, err)

	assert.Equal(t, "/revocation/build-revocation-list-2020-status", gotPath)
	assert.Equal(t, "access-token", gotAuth)
	assert.True(t, resp.IsPublishRequired)
	assert.Equal(t, "3", resp.CredentialStatus.RevocationListIndex)
}

func TestHTTPStoreRevokeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "credential already revoked"})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "")
	_, err := store.Revoke(context.Background(), RevokeParams{CredentialID: "claimId:abc"}, "")
	require.Error(t, err)

	var svcErr *services.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusConflict, svcErr.Status)
	assert.Contains(t, svcErr.Error(), "already revoked")
}

func TestHTTPStorePublishList(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "")
	err := store.PublishList(context.Background(),
		jsonmap.JSONMap{"id": "https://revocation.example.com/list/1"}, "access-token")
	require.NoError(t, err)

	list, ok := gotBody["revocationListCredential"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://revocation.example.com/list/1", list["id"])
}
