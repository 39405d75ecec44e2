package revocation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/affinityproject/affinidi-core-sdk/common/util"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// ListSubject is the credentialSubject of a published revocation-list
// credential.
type ListSubject struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	EncodedList string `json:"encodedList"`
}

// ListCredential is the shape of a fetched revocation-list credential.
type ListCredential struct {
	ID                string      `json:"id"`
	CredentialSubject ListSubject `json:"credentialSubject"`
}

// StatusChecker fetches published revocation-list credentials and checks
// whether individual credentials have been revoked.
type StatusChecker struct {
	httpClient *http.Client
}

// NewStatusChecker creates a checker with a sensible default timeout.
func NewStatusChecker() *StatusChecker {
	return &StatusChecker{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}
}

// CheckStatus fetches the list credential referenced by a credentialStatus
// entry and reports whether the credential at its index is revoked.
func (c *StatusChecker) CheckStatus(ctx context.Context, status vc.Status) (bool, error) {
	list, err := c.FetchListCredential(ctx, status.RevocationListCredential)
	if err != nil {
		return false, err
	}

	position, err := status.Index()
	if err != nil {
		return false, err
	}

	return IsRevoked(position, list.CredentialSubject)
}

// FetchListCredential fetches and parses the revocation-list credential at
// the given URL.
func (c *StatusChecker) FetchListCredential(ctx context.Context, url string) (*ListCredential, error) {
	if url == "" {
		return nil, fmt.Errorf("revocation list credential URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revocation list credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("revocation list endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read revocation list response: %w", err)
	}

	var list ListCredential
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal revocation list credential: %w", err)
	}
	return &list, nil
}

// IsRevoked checks the bit at position in the decoded list. Bits are
// packed least-significant-first within each byte.
func IsRevoked(position int, subject ListSubject) (bool, error) {
	if position < 0 {
		return false, fmt.Errorf("invalid revocation list index %d", position)
	}

	bits, err := util.DecompressFromBase64URL(subject.EncodedList)
	if err != nil {
		return false, fmt.Errorf("failed to decode encodedList: %w", err)
	}

	byteIndex := position / 8
	if byteIndex >= len(bits) {
		return false, fmt.Errorf("revocation list index %d out of range", position)
	}
	bitIndex := position % 8

	return (bits[byteIndex]>>bitIndex)&1 == 1, nil
}
