package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adawatch/charon/core"
	"github.com/adawatch/charon/ports"
)

// RedisStore is a Redis implementation of the challenge store, for
// deployments running more than one instance behind a balancer.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type redisChallenge struct {
	Nonce    string    `json:"nonce"`
	Message  string    `json:"message"`
	IssuedAt time.Time `json:"issued_at"`
}

// NewRedisStore creates a new Redis-backed challenge store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "charon:challenge:",
		ttl:    ttl,
		now:    time.Now,
	}
}

// Put stores the challenge under the address key. The Redis key outlives
// the logical TTL so that Get can still distinguish "expired" from
// "no challenge" for a while.
func (s *RedisStore) Put(ctx context.Context, challenge *core.Challenge) error {
	payload, err := json.Marshal(redisChallenge{
		Nonce:    challenge.Nonce,
		Message:  challenge.Message,
		IssuedAt: challenge.IssuedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+challenge.Address, payload, 2*s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// Get returns the stored challenge without removing it
func (s *RedisStore) Get(ctx context.Context, address string) (*core.Challenge, error) {
	val, err := s.client.Get(ctx, s.prefix+address).Result()
	if err == redis.Nil {
		return nil, core.ErrNoChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenge: %w", err)
	}

	var stored redisChallenge
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}
	if s.now().Sub(stored.IssuedAt) > s.ttl {
		return nil, core.ErrChallengeExpired
	}

	return &core.Challenge{
		Address:  address,
		Nonce:    stored.Nonce,
		Message:  stored.Message,
		IssuedAt: stored.IssuedAt,
	}, nil
}

// Remove deletes the challenge for the address, if any
func (s *RedisStore) Remove(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, s.prefix+address).Err(); err != nil {
		return fmt.Errorf("failed to remove challenge: %w", err)
	}
	return nil
}

var _ ports.ChallengeStore = (*RedisStore)(nil)
