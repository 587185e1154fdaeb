package store

import (
	"context"
	"sync"
	"time"

	"github.com/adawatch/charon/core"
	"github.com/adawatch/charon/ports"
)

// MemoryStore is an in-memory implementation of the challenge store. A
// single mutex serializes all map mutations; every operation is O(1) plus
// the opportunistic sweep on Put.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]*core.Challenge
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryStore creates a new in-memory challenge store with the given TTL
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]*core.Challenge),
		ttl:        ttl,
		now:        time.Now,
	}
}

// WithClock overrides the store clock, for tests
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Put stores the challenge, replacing any existing one for the same
// address, and evicts every entry past the TTL.
func (s *MemoryStore) Put(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.Address] = challenge

	cutoff := s.now().Add(-s.ttl)
	for addr, c := range s.challenges {
		if c.IssuedAt.Before(cutoff) {
			delete(s.challenges, addr)
		}
	}
	return nil
}

// Get returns the stored challenge without removing it
func (s *MemoryStore) Get(ctx context.Context, address string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[address]
	if !ok {
		return nil, core.ErrNoChallenge
	}
	if s.now().Sub(challenge.IssuedAt) > s.ttl {
		return nil, core.ErrChallengeExpired
	}
	return challenge, nil
}

// Remove deletes the challenge for the address, if any
func (s *MemoryStore) Remove(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, address)
	return nil
}

var _ ports.ChallengeStore = (*MemoryStore)(nil)
