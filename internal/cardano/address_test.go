package cardano

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func keyHashOf(t *testing.T, pub ed25519.PublicKey) []byte {
	t.Helper()
	hash, err := KeyHash(pub)
	require.NoError(t, err)
	return hash
}

func encodeBech32(t *testing.T, hrp string, raw []byte) string {
	t.Helper()
	data, err := bech32.ConvertBits(raw, 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode(hrp, data)
	require.NoError(t, err)
	return encoded
}

// addressBytes assembles a raw address: header, payment part, extra parts
func addressBytes(header byte, parts ...[]byte) []byte {
	raw := []byte{header}
	for _, p := range parts {
		raw = append(raw, p...)
	}
	return raw
}

func TestKeyHash(t *testing.T) {
	pub := generateKey(t)

	hash, err := KeyHash(pub)
	require.NoError(t, err)
	assert.Len(t, hash, CredentialSize)

	again, err := KeyHash(pub)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	_, err = KeyHash(pub[:16])
	assert.Error(t, err)
}

func TestParseAddressShapes(t *testing.T) {
	payment := keyHashOf(t, generateKey(t))
	stake := keyHashOf(t, generateKey(t))
	pointer := []byte{0x81, 0x04, 0x00, 0x00} // slot as a two-byte varuint

	cases := []struct {
		name        string
		header      byte
		parts       [][]byte
		wantType    byte
		wantNetwork byte
	}{
		{"base key/key mainnet", 0x01, [][]byte{payment, stake}, 0x0, 1},
		{"base key/script testnet", 0x20, [][]byte{payment, stake}, 0x2, 0},
		{"pointer mainnet", 0x41, [][]byte{payment, pointer}, 0x4, 1},
		{"enterprise mainnet", 0x61, [][]byte{payment}, 0x6, 1},
		{"enterprise testnet", 0x60, [][]byte{payment}, 0x6, 0},
		{"reward key mainnet", 0xe1, [][]byte{payment}, 0xe, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := addressBytes(tc.header, tc.parts...)

			addr, err := ParseAddress(hex.EncodeToString(raw))
			require.NoError(t, err)
			assert.Equal(t, tc.wantType, addr.Type)
			assert.Equal(t, tc.wantNetwork, addr.NetworkID)
			assert.Equal(t, payment, addr.Credential)
		})
	}
}

func TestParseAddressBech32(t *testing.T) {
	payment := keyHashOf(t, generateKey(t))
	stake := keyHashOf(t, generateKey(t))

	cases := []struct {
		name string
		hrp  string
		raw  []byte
	}{
		{"enterprise mainnet", "addr", addressBytes(0x61, payment)},
		{"base mainnet", "addr", addressBytes(0x01, payment, stake)},
		{"enterprise testnet", "addr_test", addressBytes(0x60, payment)},
		{"reward mainnet", "stake", addressBytes(0xe1, payment)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := ParseAddress(encodeBech32(t, tc.hrp, tc.raw))
			require.NoError(t, err)
			assert.Equal(t, payment, addr.Credential)
		})
	}
}

func TestParseAddressRejected(t *testing.T) {
	payment := keyHashOf(t, generateKey(t))
	stake := keyHashOf(t, generateKey(t))

	cases := []struct {
		name    string
		address string
		wantErr error
	}{
		{"empty", "", ErrInvalidAddress},
		{"not hex or bech32", "zzzz", ErrInvalidAddress},
		{"bad bech32 checksum", "addr1qqqqqqqqqqqqqqqq", ErrInvalidAddress},
		{"wrong hrp", encodeBech32(t, "ca", addressBytes(0x61, payment)), ErrInvalidAddress},
		{"too short", hex.EncodeToString([]byte{0x61, 0x01, 0x02}), ErrInvalidAddress},
		{"base address truncated", hex.EncodeToString(addressBytes(0x01, payment)), ErrInvalidAddress},
		{"pointer missing pointer", hex.EncodeToString(addressBytes(0x41, payment)), ErrInvalidAddress},
		{"enterprise with extra bytes", hex.EncodeToString(addressBytes(0x61, payment, []byte{0x00})), ErrInvalidAddress},
		{"script payment base", hex.EncodeToString(addressBytes(0x11, payment, stake)), ErrScriptCredential},
		{"script payment enterprise", hex.EncodeToString(addressBytes(0x71, payment)), ErrScriptCredential},
		{"script pointer", hex.EncodeToString(addressBytes(0x51, payment, []byte{0x00, 0x00, 0x00})), ErrScriptCredential},
		{"reward script", hex.EncodeToString(addressBytes(0xf1, payment)), ErrScriptCredential},
		{"byron", hex.EncodeToString(addressBytes(0x81, payment, stake)), ErrUnsupportedAddress},
		{"unknown type", hex.EncodeToString(addressBytes(0x91, payment)), ErrUnsupportedAddress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAddress(tc.address)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestVerifyKeyBinding(t *testing.T) {
	pub := generateKey(t)
	other := generateKey(t)
	hash := keyHashOf(t, pub)

	enterprise := encodeBech32(t, "addr", addressBytes(0x61, hash))
	enterpriseHex := hex.EncodeToString(addressBytes(0x61, hash))
	base := encodeBech32(t, "addr", addressBytes(0x01, hash, keyHashOf(t, other)))

	require.NoError(t, VerifyKeyBinding(enterprise, pub))
	require.NoError(t, VerifyKeyBinding(enterpriseHex, pub))
	require.NoError(t, VerifyKeyBinding(base, pub))

	// a valid key that is not the address's key must hard-fail
	assert.ErrorIs(t, VerifyKeyBinding(enterprise, other), ErrKeyMismatch)

	// script-held addresses must never bind, whatever the key
	script := encodeBech32(t, "addr", addressBytes(0x71, hash))
	assert.ErrorIs(t, VerifyKeyBinding(script, pub), ErrScriptCredential)

	// malformed keys are an error, not a mismatch
	assert.Error(t, VerifyKeyBinding(enterprise, pub[:12]))
}
