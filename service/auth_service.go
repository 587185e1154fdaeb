// Package service implements the wallet authentication protocol: challenge
// issuance and the verify-and-issue-session flow that composes envelope
// decoding, key-to-address binding, and signature verification.
package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adawatch/charon/core"
	"github.com/adawatch/charon/internal/cardano"
	"github.com/adawatch/charon/internal/cose"
	"github.com/adawatch/charon/internal/metrics"
	"github.com/adawatch/charon/ports"
)

const challengeTemplate = "Sign this message to authenticate with %s\n\nNonce: %s\nTimestamp: %s"

// AuthService handles authentication business logic
type AuthService struct {
	store     ports.ChallengeStore
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	log       *zap.Logger

	appName    string
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures an AuthService
type Option func(*AuthService)

// WithClock overrides the service clock, for tests
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithSessionTTL overrides the default 24h session lifetime
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// WithAppName sets the service name embedded in challenge messages
func WithAppName(name string) Option {
	return func(s *AuthService) { s.appName = name }
}

// NewAuthService creates a new authentication service
func NewAuthService(
	store ports.ChallengeStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	log *zap.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		store:      store,
		tokenizer:  tokenizer,
		eventPub:   eventPub,
		log:        log,
		appName:    "Charon",
		sessionTTL: 24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateChallenge generates and stores a new challenge for the address,
// replacing any outstanding one, and returns the message to sign and its
// nonce.
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (*core.Challenge, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: address", core.ErrMissingField)
	}

	nonce, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now()
	challenge := &core.Challenge{
		Address:  address,
		Nonce:    nonce,
		Message:  fmt.Sprintf(challengeTemplate, s.appName, nonce, now.UTC().Format(time.RFC3339)),
		IssuedAt: now,
	}

	if err := s.store.Put(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	metrics.ChallengesIssued.Inc()
	s.log.Info("challenge created", zap.String("address", addressPreview(address)))
	return challenge, nil
}

// VerifyAndIssueSession validates a signed challenge and, on success,
// consumes the challenge and returns a session token. The challenge is
// removed only after every check has passed, so a failed attempt leaves it
// available for a retry until it expires.
func (s *AuthService) VerifyAndIssueSession(ctx context.Context, address, signatureHex, keyHex, stakeAddress string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("%w: address", core.ErrMissingField)
	}
	if signatureHex == "" {
		return "", fmt.Errorf("%w: signature", core.ErrMissingField)
	}

	challenge, err := s.store.Get(ctx, address)
	if err != nil {
		s.countFailure(err)
		s.log.Warn("challenge lookup failed",
			zap.String("address", addressPreview(address)), zap.Error(err))
		return "", err
	}

	env, pub, err := s.decodeEnvelopes(signatureHex, keyHex)
	if err != nil {
		metrics.Verifications.WithLabelValues("malformed").Inc()
		s.log.Error("envelope decoding failed",
			zap.String("address", addressPreview(address)), zap.Error(err))
		return "", err
	}

	if err := cardano.VerifyKeyBinding(address, pub); err != nil {
		metrics.Verifications.WithLabelValues("binding").Inc()
		s.log.Warn("address binding failed",
			zap.String("address", addressPreview(address)), zap.Error(err))
		return "", fmt.Errorf("%w: %v", core.ErrAddressBinding, err)
	}

	ok, candidate := verifySignature(pub, env, challenge.Message)
	if !ok {
		metrics.Verifications.WithLabelValues("signature").Inc()
		s.log.Warn("signature verification failed",
			zap.String("address", addressPreview(address)))
		return "", core.ErrInvalidSignature
	}

	// one-time use: every check has passed
	if err := s.store.Remove(ctx, address); err != nil {
		return "", fmt.Errorf("failed to remove challenge: %w", err)
	}

	now := s.now()
	session := &core.Session{
		ID:           uuid.New().String(),
		Address:      address,
		StakeAddress: stakeAddress,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		metrics.Verifications.WithLabelValues("issuance").Inc()
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	if err := s.eventPub.PublishLogin(ctx, address, stakeAddress, session.ID); err != nil {
		// the session is already issued; a lost event is not fatal
		s.log.Warn("failed to publish login event", zap.Error(err))
	}

	metrics.Verifications.WithLabelValues("ok").Inc()
	s.log.Info("session issued",
		zap.String("address", addressPreview(address)),
		zap.String("session_id", session.ID),
		zap.String("signed_bytes", candidate))
	return token, nil
}

// ValidateToken parses and validates a session token, returning its session
func (s *AuthService) ValidateToken(token string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}
	if s.now().After(session.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}
	return session, nil
}

func (s *AuthService) decodeEnvelopes(signatureHex, keyHex string) (*cose.Sign1, []byte, error) {
	sigRaw, err := hex.DecodeString(signatureHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: signature is not hex", core.ErrMalformedEnvelope)
	}
	keyRaw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: key is not hex", core.ErrMalformedEnvelope)
	}

	env, err := cose.ParseSign1(sigRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrMalformedEnvelope, err)
	}
	pub, err := cose.ParsePublicKey(keyRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrMalformedEnvelope, err)
	}
	return env, pub, nil
}

func (s *AuthService) countFailure(err error) {
	switch {
	case errors.Is(err, core.ErrNoChallenge):
		metrics.Verifications.WithLabelValues("no_challenge").Inc()
	case errors.Is(err, core.ErrChallengeExpired):
		metrics.Verifications.WithLabelValues("expired").Inc()
	}
}

// randomNonce returns a random 64-bit value formatted as decimal.
// Uniqueness, not secrecy, is the requirement.
func randomNonce() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 10), nil
}

// addressPreview truncates an address for log fields
func addressPreview(address string) string {
	if len(address) > 16 {
		return address[:16]
	}
	return address
}
