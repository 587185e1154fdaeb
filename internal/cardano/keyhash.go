package cardano

import (
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// KeyHash computes the blake2b-224 digest of a 32-byte Ed25519 public key,
// the form key credentials take inside addresses.
func KeyHash(pub []byte) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key is %d bytes, want %d", len(pub), ed25519.PublicKeySize)
	}
	h, err := blake2b.New(CredentialSize, nil)
	if err != nil {
		return nil, err
	}
	h.Write(pub)
	return h.Sum(nil), nil
}
