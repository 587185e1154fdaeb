package core

import "errors"

var (
	// ErrMissingField is returned when a required request field is empty
	ErrMissingField = errors.New("missing required field")

	// ErrNoChallenge is returned when no challenge exists for an address
	ErrNoChallenge = errors.New("no challenge found")

	// ErrChallengeExpired is returned when a challenge is older than its TTL
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrInvalidSignature is returned when no accepted interpretation of the
	// signed bytes verifies under the supplied key
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAddressBinding is returned when the supplied public key does not
	// hash to the claimed address's credential, or the address cannot carry
	// a key credential at all
	ErrAddressBinding = errors.New("address binding failed")

	// ErrMalformedEnvelope is returned when a signature or key envelope
	// cannot be decoded
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrInvalidToken is returned when a session token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a session token has expired
	ErrTokenExpired = errors.New("token has expired")
)
