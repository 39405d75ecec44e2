package revocation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affinityproject/affinidi-core-sdk/common/util"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

func TestIsRevoked(t *testing.T) {
	// Bit pattern 0x05: positions 0 and 2 revoked (LSB-first).
	encoded, err := util.CompressToBase64URL([]byte{0x05})
	require.NoError(t, err)

	subject := ListSubject{EncodedList: encoded}

	revoked, err := IsRevoked(0, subject)
	require.NoError(t, err)
	assert.True(t, revoked)

	notRevoked, err := IsRevoked(1, subject)
	require.NoError(t, err)
	assert.False(t, notRevoked)

	alsoRevoked, err := IsRevoked(2, subject)
	require.NoError(t, err)
	assert.True(t, alsoRevoked)
}

func TestIsRevokedOutOfRange(t *testing.T) {
	encoded, err := util.CompressToBase64URL([]byte{0x00})
	require.NoError(t, err)

	_, err = IsRevoked(100, ListSubject{EncodedList: encoded})
	assert.Error(t, err)

	_, err = IsRevoked(-1, ListSubject{EncodedList: encoded})
	assert.Error(t, err)
}

func TestIsRevokedBadEncoding(t *testing.T) {
	_, err := IsRevoked(0, ListSubject{EncodedList: "not-gzip-base64url"})
	assert.Error(t, err)
}

func TestCheckStatus(t *testing.T) {
	encoded, err := util.CompressToBase64URL([]byte{0x02})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ListCredential{
			ID: "https://revocation.example.com/list/1",
			CredentialSubject: ListSubject{
				ID:          "https://revocation.example.com/list/1#list",
				Type:        "RevocationList2020",
				EncodedList: encoded,
			},
		})
	}))
	defer srv.Close()

	checker := NewStatusChecker()
	ctx := context.Background()

	revoked, err := checker.CheckStatus(ctx, vc.Status{
		Type:                     "RevocationList2020Status",
		RevocationListIndex:      "1",
		RevocationListCredential: srv.URL + "/list/1",
	})
	require.NoError(t, err)
	assert.True(t, revoked)

	clean, err := checker.CheckStatus(ctx, vc.Status{
		Type:                     "RevocationList2020Status",
		RevocationListIndex:      "0",
		RevocationListCredential: srv.URL + "/list/1",
	})
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestCheckStatusErrors(t *testing.T) {
	checker := NewStatusChecker()
	ctx := context.Background()

	_, err := checker.CheckStatus(ctx, vc.Status{RevocationListIndex: "0"})
	assert.Error(t, err, "empty list URL")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err = checker.CheckStatus(ctx, vc.Status{
		RevocationListIndex:      "0",
		RevocationListCredential: srv.URL,
	})
	assert.Error(t, err)
}
