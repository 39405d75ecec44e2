// Package vc models W3C verifiable credentials as exchanged by the
// wallet: the current VCV1 shape, the legacy issued/claim shape, and the
// structural checks both must pass before a credential may be supplied in
// a share response.
package vc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/affinityproject/affinidi-core-sdk/common/util"
)

// Requirement describes which credential type(s) a verifier will accept.
// Type is an ordered sequence of type tags; by convention the second tag
// names the specific credential type.
type Requirement struct {
	Type []string `json:"type"`
}

// OfferedCredential describes a credential an issuer is willing to issue.
type OfferedCredential struct {
	Type       string                 `json:"type"`
	RenderInfo map[string]interface{} `json:"renderInfo,omitempty"`
}

// Issuer is a credential issuer, either a DID string or an {id} object on
// the wire.
type Issuer struct {
	ID string `json:"id"`
}

// UnmarshalJSON accepts both the string and the object form.
func (i *Issuer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		i.ID = s
		return nil
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("issuer must be a string or an object with id: %w", err)
	}
	i.ID = obj.ID
	return nil
}

// MarshalJSON emits the string form when possible.
func (i Issuer) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.ID)
}

// Holder identifies the credential subject's DID.
type Holder struct {
	ID string `json:"id"`
}

// Status is a credential's revocation pointer (credentialStatus).
type Status struct {
	ID                       string `json:"id,omitempty"`
	Type                     string `json:"type"`
	RevocationListIndex      string `json:"revocationListIndex,omitempty"`
	RevocationListCredential string `json:"revocationListCredential,omitempty"`
}

// Index parses the revocation list index, which the wire format carries as
// a decimal string.
func (s Status) Index() (int, error) {
	idx, err := strconv.Atoi(s.RevocationListIndex)
	if err != nil {
		return 0, fmt.Errorf("invalid revocationListIndex %q: %w", s.RevocationListIndex, err)
	}
	return idx, nil
}

// Credential is a signed credential in either the current VCV1 form
// (issuanceDate + credentialSubject) or the legacy form (issued + claim).
type Credential struct {
	Context           []interface{}          `json:"@context,omitempty"`
	ID                string                 `json:"id,omitempty"`
	Type              []string               `json:"type,omitempty"`
	Issuer            Issuer                 `json:"issuer,omitempty"`
	Holder            *Holder                `json:"holder,omitempty"`
	IssuanceDate      string                 `json:"issuanceDate,omitempty"`
	ExpirationDate    string                 `json:"expirationDate,omitempty"`
	CredentialSubject map[string]interface{} `json:"credentialSubject,omitempty"`
	CredentialStatus  *Status                `json:"credentialStatus,omitempty"`
	CredentialSchema  interface{}            `json:"credentialSchema,omitempty"`
	Proof             json.RawMessage        `json:"proof,omitempty"`

	// Legacy shape.
	Issued string                 `json:"issued,omitempty"`
	Claim  map[string]interface{} `json:"claim,omitempty"`
}

// SpecificType returns the credential's specific type tag (the second tag
// by convention). A credential carrying only the base type has no specific
// type and yields the empty string.
func (c *Credential) SpecificType() string {
	if len(c.Type) < 2 {
		return ""
	}
	return c.Type[1]
}

// SubjectDid returns the DID the credential is about.
func (c *Credential) SubjectDid() string {
	if c.Holder != nil && c.Holder.ID != "" {
		return c.Holder.ID
	}
	if id, ok := c.CredentialSubject["id"].(string); ok {
		return id
	}
	if c.Claim != nil {
		if id, ok := c.Claim["id"].(string); ok {
			return id
		}
	}
	return ""
}

// MatchesRequirement reports whether the credential satisfies a
// requirement's type constraint. An empty requirement matches anything.
func (c *Credential) MatchesRequirement(req Requirement) bool {
	if len(req.Type) == 0 {
		return true
	}

	want := req.Type[len(req.Type)-1]
	for _, tag := range c.Type {
		if tag == want {
			return true
		}
	}
	return false
}

// MatchesAny reports whether the credential satisfies at least one of the
// given requirements. Zero requirements match anything (DID-auth).
func (c *Credential) MatchesAny(requirements []Requirement) bool {
	if len(requirements) == 0 {
		return true
	}
	for _, req := range requirements {
		if c.MatchesRequirement(req) {
			return true
		}
	}
	return false
}

// FilterByRequirements returns the credentials matching at least one
// requirement, preserving order.
func FilterByRequirements(creds []Credential, requirements []Requirement) []Credential {
	if len(requirements) == 0 {
		return creds
	}

	matched := make([]Credential, 0, len(creds))
	for _, c := range creds {
		if c.MatchesAny(requirements) {
			matched = append(matched, c)
		}
	}
	return matched
}

// ToJSONMap converts the credential into a plain JSON object.
func (c *Credential) ToJSONMap() (map[string]interface{}, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credential: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return m, nil
}

// FromJSONMap parses a credential out of a plain JSON object.
func FromJSONMap(m map[string]interface{}) (Credential, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to marshal credential map: %w", err)
	}
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return Credential{}, fmt.Errorf("failed to parse credential: %w", err)
	}
	return c, nil
}

// AttachStatus appends a revocation status pointer and the revocation-list
// context URI to the credential. The context append is idempotent.
func (c *Credential) AttachStatus(status Status, contextURI string) {
	c.CredentialStatus = &status
	c.Context = util.AppendContext(c.Context, contextURI).([]interface{})
}
