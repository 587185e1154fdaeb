package ports

import (
	"context"

	"github.com/adawatch/charon/core"
)

// ChallengeStore holds outstanding challenges keyed by address.
//
// Put replaces any existing challenge for the same address. Get returns the
// stored challenge without removing it, so a failed verification does not
// burn the challenge; it reports core.ErrNoChallenge when nothing is stored
// and core.ErrChallengeExpired when the entry has outlived its TTL. Remove
// is called exactly once, after a verification succeeds.
type ChallengeStore interface {
	Put(ctx context.Context, challenge *core.Challenge) error
	Get(ctx context.Context, address string) (*core.Challenge, error)
	Remove(ctx context.Context, address string) error
}
