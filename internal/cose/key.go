package cose

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	// KeySize is the length of an Ed25519 public key
	KeySize = 32

	// labelX is the COSE_Key label of the OKP public key coordinate
	// (RFC 8152 §13.2)
	labelX = -2
)

// ParsePublicKey decodes a key envelope into a raw 32-byte Ed25519 public
// key. A 32-byte input is taken as the key itself; anything else must be a
// COSE_Key map with the x coordinate under label -2.
func ParsePublicKey(raw []byte) ([]byte, error) {
	if len(raw) == KeySize {
		key := make([]byte, KeySize)
		copy(key, raw)
		return key, nil
	}

	var m map[int64]cbor.RawMessage
	if err := cbor.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	rawX, ok := m[labelX]
	if !ok {
		return nil, fmt.Errorf("%w: COSE_Key has no public key coordinate", ErrMalformed)
	}

	var x []byte
	if err := cbor.Unmarshal(rawX, &x); err != nil {
		return nil, fmt.Errorf("%w: public key coordinate is not a byte string", ErrMalformed)
	}
	if len(x) != KeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", ErrMalformed, len(x), KeySize)
	}

	return x, nil
}
