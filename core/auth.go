package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Challenge is a nonce-bearing message a wallet must sign to prove key
// ownership. Challenges are keyed by address in the store; issuing a new
// one replaces any outstanding one for the same address.
type Challenge struct {
	Address  string    // bech32 or hex Cardano address of the user
	Nonce    string    // random nonce embedded in the message
	Message  string    // full human-readable text the wallet signs
	IssuedAt time.Time // when the challenge was created
}

// Session represents an authenticated wallet session
type Session struct {
	ID           string    // unique session identifier (jti)
	Address      string    // wallet address the session was issued for
	StakeAddress string    // optional reward address supplied at login
	IssuedAt     time.Time // when the session was created
	ExpiresAt    time.Time // when the session expires
}

// AccountInfo is the on-chain summary for an address as reported by the
// chain data provider
type AccountInfo struct {
	Balance      decimal.Decimal // controlled amount in lovelace
	StakeAddress string          // associated reward address, if any
	TxCount      int
}

// Transaction is a single on-chain transaction touching an address
type Transaction struct {
	Hash        string
	Block       string
	BlockHeight uint64
	BlockTime   uint64
	Slot        uint64
	Index       uint32
	Fees        decimal.Decimal // in lovelace
}
