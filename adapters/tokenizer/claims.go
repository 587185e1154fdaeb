package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the wallet identity
type SessionClaims struct {
	jwt.RegisteredClaims
	WalletAddress string `json:"wallet_address"`
	StakeAddress  string `json:"stake_address,omitempty"`
}
