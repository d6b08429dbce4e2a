// Package config loads process-wide configuration once at boot.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded from the environment at startup and immutable afterwards.
// Components that need a value receive the struct by reference; nothing reads
// the environment after boot.
type Config struct {
	Addr        string        // listen address
	DatabaseURL string        // postgres:// DSN or a SQLite file path
	JWTSecret   []byte        // HS256 signing key, required
	TokenTTL    time.Duration // bearer token lifetime
	BcryptCost  int           // password hashing cost
	Origins     []string      // allowed CORS origins; empty means allow all
}

// Load reads configuration from the environment. A .env file next to the
// binary is honored when present (development convenience).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        envOr("ADDR", ":3000"),
		DatabaseURL: envOr("DATABASE_URL", "leveluplife.db"),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:    30 * 24 * time.Hour,
		BcryptCost:  10,
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("config: JWT_SECRET is required")
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, errors.New("config: TOKEN_TTL must be a positive duration")
		}
		cfg.TokenTTL = d
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("config: BCRYPT_COST must be an integer")
		}
		cfg.BcryptCost = n
	}

	for _, o := range strings.Split(os.Getenv("ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Origins = append(cfg.Origins, o)
		}
	}

	return cfg, nil
}

// PostgresDSN reports whether DatabaseURL points at Postgres. Anything else is
// treated as a SQLite file path.
func (c *Config) PostgresDSN() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
