package exchange

import (
	"fmt"

	"github.com/affinityproject/affinidi-core-sdk/common/token"
	"github.com/affinityproject/affinidi-core-sdk/services"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// ValidationError reports malformed or missing required input. The alias
// keeps one type across input and credential validation so callers can
// enumerate every problem with a single errors.As.
type ValidationError = vc.ValidationError

// DecodeError reports a token string that cannot be parsed.
type DecodeError = token.DecodeError

// ServiceError wraps a remote collaborator failure.
type ServiceError = services.ServiceError

// ReplayProtectionError reports that no resolvable or valid request token
// was found for a response token when one was required.
type ReplayProtectionError struct {
	Nonce string
	Cause error
}

func (e *ReplayProtectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no valid request token for nonce %q: %v", e.Nonce, e.Cause)
	}
	return fmt.Sprintf("no valid request token for nonce %q", e.Nonce)
}

func (e *ReplayProtectionError) Unwrap() error { return e.Cause }

// NoMatchingCredentialsError reports that filtering by request constraints
// left zero credentials to respond with. Callers must not silently send an
// empty response.
type NoMatchingCredentialsError struct {
	Requirements []vc.Requirement
}

func (e *NoMatchingCredentialsError) Error() string {
	return fmt.Sprintf("no supplied credentials match the request's %d requirement(s)", len(e.Requirements))
}
