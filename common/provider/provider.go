package provider

// KeyResolver resolves a DID verification method to the hex-encoded
// public key it designates. Implementations typically resolve the DID
// document from a registry; tests may supply in-memory fixtures.
type KeyResolver interface {
	// ResolvePublicKey returns the hex-encoded secp256k1 public key for a
	// verification method URL ("did:...#key-1") or a bare DID, in which
	// case the DID document's first verification method is used.
	ResolvePublicKey(verificationMethod string) (string, error)
}

// KeyResolverFunc adapts a function to the KeyResolver interface.
type KeyResolverFunc func(verificationMethod string) (string, error)

func (f KeyResolverFunc) ResolvePublicKey(verificationMethod string) (string, error) {
	return f(verificationMethod)
}
