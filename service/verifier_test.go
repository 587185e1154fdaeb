package service

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adawatch/charon/internal/cose"
)

const testMessage = "Sign this message to authenticate with Charon\n\nNonce: 42\nTimestamp: 2026-01-02T03:04:05Z"

// wire-layout twin of the Sig_structure the verifier reconstructs
type testSigStructure struct {
	_           struct{} `cbor:",toarray"`
	Context     string
	Protected   []byte
	ExternalAAD []byte
	Payload     []byte
}

func testKeypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func protectedHeader(t *testing.T) []byte {
	t.Helper()
	raw, err := cbor.Marshal(map[int64]int64{1: -8}) // alg: EdDSA
	require.NoError(t, err)
	return raw
}

func TestVerifySignatureRawMessage(t *testing.T) {
	pub, priv := testKeypair(t)
	env := &cose.Sign1{Signature: ed25519.Sign(priv, []byte(testMessage))}

	ok, candidate := verifySignature(pub, env, testMessage)
	require.True(t, ok)
	assert.Equal(t, "raw_message", candidate)
}

func TestVerifySignatureSigStructure(t *testing.T) {
	pub, priv := testKeypair(t)
	protected := protectedHeader(t)

	signed, err := cbor.Marshal(testSigStructure{
		Context:     "Signature1",
		Protected:   protected,
		ExternalAAD: []byte{},
		Payload:     []byte(testMessage),
	})
	require.NoError(t, err)

	env := &cose.Sign1{
		Protected: protected,
		Payload:   []byte(testMessage),
		Signature: ed25519.Sign(priv, signed),
	}

	ok, candidate := verifySignature(pub, env, testMessage)
	require.True(t, ok)
	assert.Equal(t, "sig_structure", candidate)
}

func TestVerifySignatureHexMessage(t *testing.T) {
	pub, priv := testKeypair(t)
	hexText := hex.EncodeToString([]byte(testMessage))
	env := &cose.Sign1{Signature: ed25519.Sign(priv, []byte(hexText))}

	ok, candidate := verifySignature(pub, env, testMessage)
	require.True(t, ok)
	assert.Equal(t, "hex_message", candidate)
}

func TestVerifySignatureUppercaseHexPayload(t *testing.T) {
	pub, priv := testKeypair(t)
	payload := []byte(strings.ToUpper(hex.EncodeToString([]byte(testMessage))))

	env := &cose.Sign1{
		Payload:   payload,
		Signature: ed25519.Sign(priv, payload),
	}

	ok, candidate := verifySignature(pub, env, testMessage)
	require.True(t, ok)
	assert.Equal(t, "hex_payload", candidate)
}

func TestVerifySignatureRejections(t *testing.T) {
	pub, priv := testKeypair(t)
	otherPub, _ := testKeypair(t)

	good := ed25519.Sign(priv, []byte(testMessage))

	corrupted := append([]byte{}, good...)
	corrupted[10] ^= 0x01

	cases := []struct {
		name string
		pub  ed25519.PublicKey
		env  *cose.Sign1
	}{
		{"bit-flipped signature", pub, &cose.Sign1{Signature: corrupted}},
		{"wrong key", otherPub, &cose.Sign1{Signature: good}},
		{"signature over unrelated text", pub, &cose.Sign1{Signature: ed25519.Sign(priv, []byte("something else"))}},
		{"payload differs from message", pub, &cose.Sign1{
			Payload:   []byte("not the message"),
			Signature: ed25519.Sign(priv, []byte("not the message")),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, _ := verifySignature(tc.pub, tc.env, testMessage)
			assert.False(t, ok)
		})
	}
}

// A bare 64-byte signature and a 4-element envelope with empty payload and
// headers must verify identically.
func TestVerifySignatureEnvelopeShapesEquivalent(t *testing.T) {
	pub, priv := testKeypair(t)
	sig := ed25519.Sign(priv, []byte(testMessage))

	bare, err := cose.ParseSign1(sig)
	require.NoError(t, err)

	structured, err := cbor.Marshal(struct {
		_           struct{} `cbor:",toarray"`
		Protected   []byte
		Unprotected map[int64]int64
		Payload     []byte
		Signature   []byte
	}{
		Protected:   []byte{},
		Unprotected: map[int64]int64{},
		Payload:     []byte{},
		Signature:   sig,
	})
	require.NoError(t, err)

	enveloped, err := cose.ParseSign1(structured)
	require.NoError(t, err)

	okBare, _ := verifySignature(pub, bare, testMessage)
	okEnveloped, _ := verifySignature(pub, enveloped, testMessage)
	assert.True(t, okBare)
	assert.True(t, okEnveloped)
}

func TestCandidateConstructors(t *testing.T) {
	msg := []byte(testMessage)

	t.Run("sig_structure skipped for bare signatures", func(t *testing.T) {
		_, ok := sigStructureBytes(msg, &cose.Sign1{})
		assert.False(t, ok)
	})

	t.Run("payload_equals_message applies only on exact match", func(t *testing.T) {
		got, ok := payloadEqualsMessage(msg, &cose.Sign1{Payload: msg})
		require.True(t, ok)
		assert.Equal(t, msg, got)

		_, ok = payloadEqualsMessage(msg, &cose.Sign1{Payload: []byte("other")})
		assert.False(t, ok)

		_, ok = payloadEqualsMessage(msg, &cose.Sign1{})
		assert.False(t, ok)
	})

	t.Run("hex_message renders lowercase hex", func(t *testing.T) {
		got, ok := hexMessageBytes(msg, &cose.Sign1{})
		require.True(t, ok)
		assert.Equal(t, []byte(hex.EncodeToString(msg)), got)
	})

	t.Run("hex_payload requires decodable matching hex", func(t *testing.T) {
		payload := []byte(strings.ToUpper(hex.EncodeToString(msg)))
		got, ok := hexPayloadBytes(msg, &cose.Sign1{Payload: payload})
		require.True(t, ok)
		assert.Equal(t, payload, got)

		_, ok = hexPayloadBytes(msg, &cose.Sign1{Payload: []byte("not hex!")})
		assert.False(t, ok)

		otherHex := []byte(hex.EncodeToString([]byte("other")))
		_, ok = hexPayloadBytes(msg, &cose.Sign1{Payload: otherHex})
		assert.False(t, ok)
	})
}
