package exchange

import (
	"context"
	"fmt"

	"github.com/affinityproject/affinidi-core-sdk/common/token"
	issuerapi "github.com/affinityproject/affinidi-core-sdk/services/issuer"
	"github.com/affinityproject/affinidi-core-sdk/vc"
)

// OfferResponseResult is the outcome of verifying an offer response token.
// When IsValid is false no field other than Errors is meaningful.
type OfferResponseResult struct {
	IsValid             bool
	IssuerDid           string
	Nonce               string
	SelectedCredentials []vc.OfferedCredential
	Errors              []error
}

// ShareResponseResult is the outcome of verifying a share response token.
// When IsValid is false no field other than Errors is meaningful.
type ShareResponseResult struct {
	IsValid             bool
	Did                 string
	Nonce               string
	SuppliedCredentials []vc.Credential
	Errors              []error
}

// RequestTokenResolver maps a response's nonce to the request token it
// answers, supporting asynchronous lookup of stored requests.
type RequestTokenResolver func(ctx context.Context, nonce string) (string, error)

// StaticRequestToken adapts a literal request token to a resolver.
func StaticRequestToken(requestToken string) RequestTokenResolver {
	return func(context.Context, string) (string, error) {
		return requestToken, nil
	}
}

// VerifyOfferResponseToken verifies an offer response, matching it against
// the request token when one is supplied (audience and nonce binding);
// with an empty request token the response's internal claims are trusted.
// Verification outcomes are reported through the result, never panicked
// or returned as an error.
func (e *Exchange) VerifyOfferResponseToken(ctx context.Context, responseToken, requestToken string) OfferResponseResult {
	var result OfferResponseResult

	response, err := token.Decode(responseToken)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	responderDid, err := e.verifier.VerifyDecoded(response)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("signature verification failed: %w", err))
		return result
	}

	if response.Payload.Expired(e.now()) {
		result.Errors = append(result.Errors, fmt.Errorf("response token expired"))
	}

	if requestToken != "" {
		request, err := token.Decode(requestToken)
		if err != nil {
			result.Errors = append(result.Errors, err)
		} else {
			result.Errors = append(result.Errors, matchResponseToRequest(response, request)...)
		}
	}

	verdict, err := e.issuerAPI.VerifyOfferResponse(ctx, issuerapi.VerifyOfferResponseParams{
		CredentialOfferResponseToken: responseToken,
		CredentialOfferRequestToken:  requestToken,
	})
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}
	if !verdict.IsValid {
		for _, msg := range verdict.Errors {
			result.Errors = append(result.Errors, fmt.Errorf("%s", msg))
		}
		if len(verdict.Errors) == 0 {
			result.Errors = append(result.Errors, fmt.Errorf("offer response rejected by issuer service"))
		}
	}

	if len(result.Errors) > 0 {
		return result
	}

	result.IsValid = true
	result.IssuerDid = responderDid
	result.Nonce = response.Payload.Jti
	result.SelectedCredentials = verdict.SelectedCredentials
	return result
}

// VerifyShareResponseToken verifies a share response token. The resolver
// locates the originating request by nonce; a nil resolver skips
// request/response binding and trusts the response's internal claims.
// With shouldOwn true every supplied credential's subject DID must equal
// the responder's DID; violations are reported per credential in Errors.
func (e *Exchange) VerifyShareResponseToken(ctx context.Context, responseToken string, resolve RequestTokenResolver, shouldOwn bool) ShareResponseResult {
	var result ShareResponseResult

	response, err := token.Decode(responseToken)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	responderDid, err := e.verifier.VerifyDecoded(response)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("signature verification failed: %w", err))
		return result
	}

	if response.Payload.Expired(e.now()) {
		result.Errors = append(result.Errors, fmt.Errorf("response token expired"))
	}

	var requirements []vc.Requirement
	requirementsKnown := false

	if resolve != nil {
		request, replayErr := e.resolveRequest(ctx, response.Payload.Jti, resolve)
		if replayErr != nil {
			result.Errors = append(result.Errors, replayErr)
		} else {
			result.Errors = append(result.Errors, matchResponseToRequest(response, request)...)

			reqs, err := requirementsFromInteraction(request.Payload.Interaction)
			if err != nil {
				result.Errors = append(result.Errors, err)
			} else {
				requirements = reqs
				requirementsKnown = true
			}
		}
	}

	supplied, err := suppliedFromInteraction(response.Payload.Interaction)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	// DID-auth: an empty-requirement request never inspects supplied
	// credentials for type matching.
	if requirementsKnown && len(requirements) > 0 {
		for _, cred := range supplied {
			if !cred.MatchesAny(requirements) {
				result.Errors = append(result.Errors,
					fmt.Errorf("credential %q does not satisfy any request requirement", cred.ID))
			}
		}
	}

	if shouldOwn {
		for _, cred := range supplied {
			if subject := cred.SubjectDid(); subject != responderDid {
				result.Errors = append(result.Errors,
					fmt.Errorf("credential %q subject %q is not owned by responder %q", cred.ID, subject, responderDid))
			}
		}
	}

	if len(result.Errors) > 0 {
		return result
	}

	result.IsValid = true
	result.Did = responderDid
	result.Nonce = response.Payload.Jti
	result.SuppliedCredentials = supplied
	return result
}

// VerifyDidAuthResponse verifies a DID-auth response: a share response
// specialized to an empty credential set, proving only control of the
// responding DID.
func (e *Exchange) VerifyDidAuthResponse(ctx context.Context, responseToken string, resolve RequestTokenResolver) ShareResponseResult {
	return e.VerifyShareResponseToken(ctx, responseToken, resolve, true)
}

func (e *Exchange) resolveRequest(ctx context.Context, nonce string, resolve RequestTokenResolver) (*token.Token, error) {
	requestToken, err := resolve(ctx, nonce)
	if err != nil {
		return nil, &ReplayProtectionError{Nonce: nonce, Cause: err}
	}
	if requestToken == "" {
		return nil, &ReplayProtectionError{Nonce: nonce}
	}

	request, err := token.Decode(requestToken)
	if err != nil {
		return nil, &ReplayProtectionError{Nonce: nonce, Cause: err}
	}
	return request, nil
}

func matchResponseToRequest(response, request *token.Token) []error {
	var errs []error

	if response.Payload.Jti != request.Payload.Jti {
		errs = append(errs, fmt.Errorf("response nonce %q does not match request nonce %q",
			response.Payload.Jti, request.Payload.Jti))
	}
	if response.Payload.Aud != "" && response.Payload.Aud != request.Payload.Iss {
		errs = append(errs, fmt.Errorf("response audience %q does not match request issuer %q",
			response.Payload.Aud, request.Payload.Iss))
	}
	if request.Payload.Aud != "" && request.Payload.Aud != response.Payload.Iss {
		errs = append(errs, fmt.Errorf("request audience %q does not match responder %q",
			request.Payload.Aud, response.Payload.Iss))
	}
	return errs
}
