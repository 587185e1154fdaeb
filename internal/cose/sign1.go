// Package cose decodes the CBOR envelopes produced by CIP-30 wallet
// extensions: the COSE_Sign1 structure returned by signData and the
// COSE_Key structure carrying the signing key. Only the fields the
// authentication flow needs are surfaced; everything else in the envelopes
// is validated for shape and discarded.
package cose

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	// SignatureSize is the length of an Ed25519 signature
	SignatureSize = 64

	// sigContext is the fixed context string of a COSE Signature1
	// Sig_structure (RFC 8152 §4.4)
	sigContext = "Signature1"
)

// ErrMalformed is returned when envelope bytes cannot be decoded into the
// expected structure
var ErrMalformed = errors.New("malformed COSE envelope")

// Sign1 is a decoded COSE_Sign1 envelope. Protected and Payload may be
// empty: older signing clients send a bare 64-byte signature, and CIP-30
// allows a null payload when the caller asked for it to be detached.
type Sign1 struct {
	Protected []byte // protected header bytes, still CBOR-encoded
	Payload   []byte // embedded payload, nil when detached
	Signature []byte // exactly SignatureSize bytes
}

// sign1Envelope mirrors the COSE_Sign1 wire layout:
// [protected: bstr, unprotected: map, payload: bstr / nil, signature: bstr]
type sign1Envelope struct {
	_           struct{} `cbor:",toarray"`
	Protected   []byte
	Unprotected cbor.RawMessage
	Payload     []byte
	Signature   []byte
}

// sigStructure mirrors the Sig_structure a wallet signs over:
// ["Signature1", body_protected: bstr, external_aad: bstr, payload: bstr]
type sigStructure struct {
	_           struct{} `cbor:",toarray"`
	Context     string
	Protected   []byte
	ExternalAAD []byte
	Payload     []byte
}

// ParseSign1 decodes a signature envelope. A 64-byte input is taken as a
// bare signature with no headers or payload; anything else must be a
// well-formed 4-element COSE_Sign1 array.
func ParseSign1(raw []byte) (*Sign1, error) {
	if len(raw) == SignatureSize {
		sig := make([]byte, SignatureSize)
		copy(sig, raw)
		return &Sign1{Signature: sig}, nil
	}

	var env sign1Envelope
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(env.Signature) != SignatureSize {
		return nil, fmt.Errorf("%w: signature is %d bytes, want %d", ErrMalformed, len(env.Signature), SignatureSize)
	}

	return &Sign1{
		Protected: env.Protected,
		Payload:   env.Payload,
		Signature: env.Signature,
	}, nil
}

// SigStructure serializes the Signature1 context envelope for this
// signature with an empty external AAD. This reconstructs the exact byte
// string a spec-conforming COSE signer produced the signature over.
func (s *Sign1) SigStructure() ([]byte, error) {
	enc := sigStructure{
		Context:     sigContext,
		Protected:   notNil(s.Protected),
		ExternalAAD: []byte{},
		Payload:     notNil(s.Payload),
	}
	out, err := cbor.Marshal(enc)
	if err != nil {
		return nil, fmt.Errorf("encode Sig_structure: %w", err)
	}
	return out, nil
}

// notNil keeps empty byte strings encoding as h'' rather than null
func notNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
