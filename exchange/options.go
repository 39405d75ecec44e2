package exchange

import (
	"time"

	"github.com/google/uuid"
)

// RequestOpt configures an interaction token build operation.
type RequestOpt func(*requestOptions)

type requestOptions struct {
	audienceDid string
	expiresAt   time.Time
	nonce       string
	callbackURL string
}

// WithAudience binds the token to a recipient DID.
func WithAudience(did string) RequestOpt {
	return func(o *requestOptions) {
		o.audienceDid = did
	}
}

// WithExpiry sets an explicit expiry on the token.
func WithExpiry(t time.Time) RequestOpt {
	return func(o *requestOptions) {
		o.expiresAt = t
	}
}

// WithNonce sets an explicit token identifier instead of a generated one.
func WithNonce(nonce string) RequestOpt {
	return func(o *requestOptions) {
		o.nonce = nonce
	}
}

// WithCallbackURL sets the callback URL carried in the interaction payload.
func WithCallbackURL(url string) RequestOpt {
	return func(o *requestOptions) {
		o.callbackURL = url
	}
}

// buildRequestOptions resolves the option set, minting a nonce when none
// was supplied so the interaction payload and the token jti always agree.
func buildRequestOptions(opts []RequestOpt) *requestOptions {
	options := &requestOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.nonce == "" {
		options.nonce = uuid.NewString()
	}
	return options
}
