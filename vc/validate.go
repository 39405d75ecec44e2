package vc

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError reports structurally invalid credentials. Problems holds
// one entry per offending credential so callers see every failure at once.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid credentials: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the credential's structural shape: the current form
// requires issuanceDate and credentialSubject, the legacy form requires
// issued and claim, and the two forms must not be mixed.
func (c *Credential) Validate() error {
	hasCurrent := c.IssuanceDate != "" && c.CredentialSubject != nil
	hasLegacy := c.Issued != "" && c.Claim != nil

	anyCurrent := c.IssuanceDate != "" || c.CredentialSubject != nil
	anyLegacy := c.Issued != "" || c.Claim != nil

	switch {
	case anyCurrent && anyLegacy:
		return fmt.Errorf("credential %q mixes current and legacy fields", c.ID)
	case hasCurrent, hasLegacy:
		return nil
	case anyCurrent:
		return fmt.Errorf("credential %q is missing issuanceDate or credentialSubject", c.ID)
	case anyLegacy:
		return fmt.Errorf("credential %q is missing issued or claim", c.ID)
	default:
		return fmt.Errorf("credential %q has neither current nor legacy fields", c.ID)
	}
}

// ValidateAll validates every credential and returns a ValidationError
// enumerating each failure, or nil when all pass.
func ValidateAll(creds []Credential) error {
	var problems []string
	for i, c := range creds {
		if err := c.Validate(); err != nil {
			id := c.ID
			if id == "" {
				id = fmt.Sprintf("index %d", i)
			}
			problems = append(problems, fmt.Sprintf("%s: %v", id, err))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateSchema validates the credential against its credentialSchema
// references, when present.
func (c *Credential) ValidateSchema() error {
	schemaIDs, err := schemaIDs(c.CredentialSchema)
	if err != nil {
		return err
	}

	doc, err := c.ToJSONMap()
	if err != nil {
		return err
	}

	for _, schemaID := range schemaIDs {
		schemaLoader := gojsonschema.NewReferenceLoader(schemaID)
		credentialLoader := gojsonschema.NewGoLoader(doc)

		result, err := gojsonschema.Validate(schemaLoader, credentialLoader)
		if err != nil {
			return fmt.Errorf("failed to validate schema: %w", err)
		}
		if !result.Valid() {
			return fmt.Errorf("credential schema validation failed: %v", result.Errors())
		}
	}
	return nil
}

func schemaIDs(schema interface{}) ([]string, error) {
	switch v := schema.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case map[string]interface{}:
		if id, ok := v["id"].(string); ok && id != "" {
			return []string{id}, nil
		}
		return nil, fmt.Errorf("credentialSchema.id is required")
	case []interface{}:
		var ids []string
		for _, entry := range v {
			sub, err := schemaIDs(entry)
			if err != nil {
				return nil, err
			}
			ids = append(ids, sub...)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported credentialSchema format: %T", v)
	}
}
