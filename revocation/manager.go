// Package revocation manages a credential's membership in a shared
// revocation-list credential. The backing store owns index allocation and
// serializes it; this manager only orchestrates the build, revoke, and
// publish steps and never retries on failure.
package revocation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/affinityproject/affinidi-core-sdk/common/jsonmap"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// ContextURI is the JSON-LD context for RevocationList2020 status entries.
const ContextURI = "https://w3id.org/vc-revocation-list-2020/v1"

// BuildStatusParams identifies the credential getting a status entry.
type BuildStatusParams struct {
	CredentialID string `json:"credentialId"`
	SubjectDid   string `json:"subjectDid"`
}

// BuildStatusResponse is the store's answer to a status allocation.
type BuildStatusResponse struct {
	CredentialStatus  vc.Status       `json:"credentialStatus"`
	IsPublishRequired bool            `json:"isPublishRequired"`
	RevocationList    jsonmap.JSONMap `json:"revocationListCredential"`
}

// RevokeParams identifies the credential to revoke.
type RevokeParams struct {
	CredentialID     string `json:"credentialId"`
	RevocationReason string `json:"revocationReason"`
}

// RevokeResponse carries the updated list credential after a revocation.
type RevokeResponse struct {
	RevocationList jsonmap.JSONMap `json:"revocationListCredential"`
}

// Store is the external revocation-list storage. It is the source of truth
// for index allocation and must serialize concurrent allocations per list.
type Store interface {
	BuildStatus(ctx context.Context, params BuildStatusParams, accessToken string) (*BuildStatusResponse, error)
	Revoke(ctx context.Context, params RevokeParams, accessToken string) (*RevokeResponse, error)
	PublishList(ctx context.Context, listCredential jsonmap.JSONMap, accessToken string) error
}

// ListSigner attaches an issuer proof to a revocation-list credential
// before it is published.
type ListSigner interface {
	ProveDocument(doc *jsonmap.JSONMap, proofPurpose, challenge, domain string) error
}

// StatusResult is what BuildStatus hands back to the issuing flow.
type StatusResult struct {
	CredentialStatus vc.Status

	// IsPublishRequired is true when a new list credential was allocated
	// for this status. The caller must sign and publish ListCredential
	// before issuing the credential; a credential pointing at an
	// unpublished list cannot be revocation-checked.
	IsPublishRequired bool

	ListCredential jsonmap.JSONMap
}

// Manager orchestrates revocation-list state transitions.
type Manager struct {
	store  Store
	signer ListSigner
	log    *logrus.Entry
}

// NewManager builds a Manager over the given store and list signer.
func NewManager(store Store, signer ListSigner) *Manager {
	return &Manager{
		store:  store,
		signer: signer,
		log:    logrus.WithField("component", "revocation"),
	}
}

// BuildStatus allocates (or reuses) a revocation-list index for
// credentialID. Calling it again for the same credentialID before any
// revocation returns the same index with IsPublishRequired=false.
func (m *Manager) BuildStatus(ctx context.Context, credentialID, subjectDid, accessToken string) (*StatusResult, error) {
	if credentialID == "" {
		return nil, fmt.Errorf("credential id is required")
	}

	resp, err := m.store.BuildStatus(ctx, BuildStatusParams{
		CredentialID: credentialID,
		SubjectDid:   subjectDid,
	}, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build revocation status for %q: %w", credentialID, err)
	}

	m.log.WithFields(logrus.Fields{
		"credentialId":      credentialID,
		"isPublishRequired": resp.IsPublishRequired,
	}).Debug("built revocation status")

	return &StatusResult{
		CredentialStatus:  resp.CredentialStatus,
		IsPublishRequired: resp.IsPublishRequired,
		ListCredential:    resp.RevocationList,
	}, nil
}

// AttachStatus embeds the status entry into the credential and adds the
// revocation-list context. The context append is idempotent.
func AttachStatus(cred *vc.Credential, status vc.Status) {
	cred.AttachStatus(status, ContextURI)
}

// Revoke flips the stored status for credentialID to revoked and returns
// the updated list credential. Revocation always requires a re-publish,
// so the list is returned unconditionally. Revoking an unknown or
// already-revoked credential surfaces the store's error.
func (m *Manager) Revoke(ctx context.Context, credentialID, reason, accessToken string) (jsonmap.JSONMap, error) {
	if credentialID == "" {
		return nil, fmt.Errorf("credential id is required")
	}

	resp, err := m.store.Revoke(ctx, RevokeParams{
		CredentialID:     credentialID,
		RevocationReason: reason,
	}, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke %q: %w", credentialID, err)
	}

	m.log.WithField("credentialId", credentialID).Info("credential revoked")

	return resp.RevocationList, nil
}

// PublishList signs the list credential with the issuer key and publishes
// it through the store.
func (m *Manager) PublishList(ctx context.Context, listCredential jsonmap.JSONMap, accessToken string) error {
	if listCredential == nil {
		return fmt.Errorf("list credential is required")
	}

	if err := m.signer.ProveDocument(&listCredential, "assertionMethod", "", ""); err != nil {
		return fmt.Errorf("failed to sign revocation list credential: %w", err)
	}

	if err := m.store.PublishList(ctx, listCredential, accessToken); err != nil {
		return fmt.Errorf("failed to publish revocation list credential: %w", err)
	}

	m.log.Debug("published revocation list credential")
	return nil
}
