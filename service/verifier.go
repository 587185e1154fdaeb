package service

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"

	"github.com/adawatch/charon/internal/cose"
)

// Wallet extensions disagree on which byte string signData actually signs:
// some sign the full COSE Sig_structure, some the raw message, some a
// hex-text rendering of it. The verifier tries a fixed ordered list of
// candidate byte strings and accepts the first that validates. Each
// candidate constructor is pure: given the challenge message and the
// decoded envelope it either produces the bytes to verify or reports that
// it does not apply.

type signedBytesCandidate struct {
	name  string
	build func(message []byte, env *cose.Sign1) ([]byte, bool)
}

var signedBytesCandidates = []signedBytesCandidate{
	{"sig_structure", sigStructureBytes},
	{"raw_message", rawMessageBytes},
	{"payload_equals_message", payloadEqualsMessage},
	{"hex_message", hexMessageBytes},
	{"hex_payload", hexPayloadBytes},
}

// verifySignature reports whether the envelope's signature validates under
// pub for any accepted interpretation of the signed bytes, and the name of
// the interpretation that matched.
func verifySignature(pub ed25519.PublicKey, env *cose.Sign1, message string) (bool, string) {
	msg := []byte(message)
	for _, c := range signedBytesCandidates {
		signed, ok := c.build(msg, env)
		if !ok {
			continue
		}
		if ed25519.Verify(pub, signed, env.Signature) {
			return true, c.name
		}
	}
	return false, ""
}

// sigStructureBytes reconstructs the COSE Signature1 context envelope.
// Only attempted when the envelope actually carried headers or a payload;
// a bare signature has no Sig_structure to reconstruct.
func sigStructureBytes(_ []byte, env *cose.Sign1) ([]byte, bool) {
	if len(env.Protected) == 0 && len(env.Payload) == 0 {
		return nil, false
	}
	sig, err := env.SigStructure()
	if err != nil {
		return nil, false
	}
	return sig, true
}

// rawMessageBytes covers clients that signed the challenge text directly
func rawMessageBytes(message []byte, _ *cose.Sign1) ([]byte, bool) {
	return message, true
}

// payloadEqualsMessage verifies against the embedded payload when it is
// byte-for-byte the challenge message. Subsumed by rawMessageBytes, but
// kept as an explicit branch so the payload path stays independently
// testable.
func payloadEqualsMessage(message []byte, env *cose.Sign1) ([]byte, bool) {
	if len(env.Payload) == 0 || !bytes.Equal(env.Payload, message) {
		return nil, false
	}
	return env.Payload, true
}

// hexMessageBytes covers clients that were asked to sign a hex rendering
// of the message
func hexMessageBytes(message []byte, _ *cose.Sign1) ([]byte, bool) {
	return []byte(hex.EncodeToString(message)), true
}

// hexPayloadBytes covers payloads that are themselves hex text decoding to
// the challenge message. The signature is checked over the payload bytes
// as sent, which also catches upper- and mixed-case hex that
// hexMessageBytes cannot reproduce.
func hexPayloadBytes(message []byte, env *cose.Sign1) ([]byte, bool) {
	if len(env.Payload) == 0 {
		return nil, false
	}
	decoded, err := hex.DecodeString(string(env.Payload))
	if err != nil {
		return nil, false
	}
	if !bytes.Equal(decoded, message) {
		return nil, false
	}
	return env.Payload, true
}
