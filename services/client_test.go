package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSuccess(t *testing.T) {
	var gotAPIKey, gotAuth, gotContentType string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("Api-Key")
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer srv.Close()

	client := NewClient("issuer", srv.URL, "test-api-key")

	var out struct {
		Result string `json:"result"`
	}
	err := client.Post(context.Background(), "TestOp", "/interactions/test",
		map[string]string{"field": "value"}, &out,
		map[string]string{"Authorization": "token-abc"})
	require.NoError(t, err)

	assert.Equal(t, "ok", out.Result)
	assert.Equal(t, "test-api-key", gotAPIKey)
	assert.Equal(t, "token-abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "value", gotBody["field"])
}

func TestPostServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "offeredCredentials must not be empty"})
	}))
	defer srv.Close()

	client := NewClient("issuer", srv.URL, "")

	err := client.Post(context.Background(), "BuildOffer", "/interactions/credential-offer", nil, nil, nil)
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "issuer", svcErr.Service)
	assert.Equal(t, "BuildOffer", svcErr.Op)
	assert.Equal(t, http.StatusUnprocessableEntity, svcErr.Status)
	assert.Contains(t, svcErr.Error(), "offeredCredentials must not be empty")
}

func TestPostConnectionError(t *testing.T) {
	client := NewClient("verifier", "http://127.0.0.1:0", "")

	err := client.Post(context.Background(), "BuildShareRequest", "/x", nil, nil, nil)
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "verifier", svcErr.Service)
	assert.NotNil(t, svcErr.Unwrap())
}

func TestPostDiscardsBodyWhenOutNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	client := NewClient("revocation", srv.URL, "")
	err := client.Post(context.Background(), "PublishList", "/publish", map[string]string{}, nil, nil)
	assert.NoError(t, err)
}
