package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SharedSecret derives the ECDH shared secret between a peer's public key
// and an own private key, both hex encoded. Both directions of a key pair
// derive the same secret.
func SharedSecret(peerPubHex, ownPrivHex string) ([]byte, error) {
	peerPubBytes, err := hex.DecodeString(trim0x(peerPubHex))
	if err != nil {
		return nil, fmt.Errorf("failed to decode peer public key: %w", err)
	}
	peerPubKey, err := secp256k1.ParsePubKey(peerPubBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse peer public key: %w", err)
	}

	ownPrivBytes, err := hex.DecodeString(trim0x(ownPrivHex))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	ownPrivKey := secp256k1.PrivKeyFromBytes(ownPrivBytes)

	shared := secp256k1.GenerateSharedSecret(ownPrivKey, peerPubKey)

	return shared[:], nil
}
