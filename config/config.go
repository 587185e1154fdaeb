// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything main needs to wire the service
type Config struct {
	// Addr is the HTTP listen address
	Addr string

	// AppName is embedded in challenge messages
	AppName string

	// JWTSecret signs session tokens
	JWTSecret string

	// SessionTTL is the session token lifetime
	SessionTTL time.Duration

	// ChallengeTTL is how long an issued challenge stays valid
	ChallengeTTL time.Duration

	// RedisURL enables the Redis challenge store and event stream when set
	RedisURL string

	// BlockfrostProjectID enables the user-data endpoints when set
	BlockfrostProjectID string

	// Network selects the Cardano network ("mainnet", "preprod", "preview")
	Network string
}

const defaultJWTSecret = "change-this-secret-in-production-use-strong-key"

// Load reads configuration from environment variables, applying the same
// defaults the service has always shipped with.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:                getenv("SERVER_ADDR", ":8080"),
		AppName:             getenv("APP_NAME", "Charon"),
		JWTSecret:           getenv("JWT_SECRET", defaultJWTSecret),
		RedisURL:            os.Getenv("REDIS_URL"),
		BlockfrostProjectID: os.Getenv("BLOCKFROST_PROJECT_ID"),
		Network:             getenv("CARDANO_NETWORK", "preprod"),
	}

	var err error
	cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.ChallengeTTL, err = getDuration("CHALLENGE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// UsingDefaultSecret reports whether the fallback JWT secret is in use
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
