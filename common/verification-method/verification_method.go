package verificationmethod

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// VerificationMethodEntry represents a single verification method in a DID Document.
type VerificationMethodEntry struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyHex string `json:"publicKeyHex"`
}

// DIDDocument represents the structure of a resolved DID Document.
type DIDDocument struct {
	Context            []string                  `json:"@context"`
	ID                 string                    `json:"id"`
	VerificationMethod []VerificationMethodEntry `json:"verificationMethod"`
	Authentication     []string                  `json:"authentication"`
	AssertionMethod    []string                  `json:"assertionMethod"`
	Controller         string                    `json:"controller"`
}

// Resolver is a client for resolving DIDs against a registry endpoint.
// Concurrent resolutions of the same DID are collapsed into one request.
type Resolver struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
}

// NewResolver creates a new DID resolver with a given base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ResolvePublicKey retrieves the hex public key for a verification method
// URL ("did:...#key-1") or, given a bare DID, the document's first
// verification method. Implements provider.KeyResolver.
func (r *Resolver) ResolvePublicKey(keyRef string) (string, error) {
	if keyRef == "" {
		return "", fmt.Errorf("verification method is empty")
	}

	didPart, _, hasFragment := strings.Cut(keyRef, "#")
	if didPart == "" {
		return "", fmt.Errorf("invalid verification method URL, could not extract DID: %s", keyRef)
	}

	doc, err := r.ResolveToDoc(didPart)
	if err != nil {
		return "", fmt.Errorf("failed to resolve DID '%s': %w", didPart, err)
	}

	if !hasFragment {
		if len(doc.VerificationMethod) == 0 {
			return "", fmt.Errorf("verification method not found in DID '%s' document", didPart)
		}
		return strings.TrimPrefix(doc.VerificationMethod[0].PublicKeyHex, "0x"), nil
	}

	for _, vm := range doc.VerificationMethod {
		if vm.ID == keyRef {
			return strings.TrimPrefix(vm.PublicKeyHex, "0x"), nil
		}
	}

	return "", fmt.Errorf("verification method '%s' not found in DID document", keyRef)
}

// ResolveToDoc fetches and parses a DID document from the resolver endpoint.
func (r *Resolver) ResolveToDoc(did string) (*DIDDocument, error) {
	doc, err, _ := r.group.Do(did, func() (interface{}, error) {
		return r.fetchDoc(did)
	})
	if err != nil {
		return nil, err
	}
	return doc.(*DIDDocument), nil
}

func (r *Resolver) fetchDoc(did string) (*DIDDocument, error) {
	apiURL := r.baseURL + "/" + url.PathEscape(did)

	resp, err := r.client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request to DID resolver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DID resolver API returned non-200 status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from DID resolver: %w", err)
	}

	var doc DIDDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DID document JSON: %w", err)
	}

	return &doc, nil
}

// DIDFromKeyRef extracts the DID from a verification method URL.
func DIDFromKeyRef(keyRef string) (string, error) {
	if keyRef == "" {
		return "", fmt.Errorf("verification method is empty")
	}

	didPart, _, _ := strings.Cut(keyRef, "#")
	if !strings.HasPrefix(didPart, "did:") {
		return "", fmt.Errorf("extracted DID '%s' is invalid, must start with 'did:'", didPart)
	}

	return didPart, nil
}
