package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leveluplife/server/internal/errs"
)

// Sessions issues and verifies bearer tokens binding a request to an identity.
// Verification is purely cryptographic; the server keeps no session table, so
// revocation before expiry is not supported.
type Sessions struct {
	signKey []byte
	ttl     time.Duration
}

// NewSessions constructs a session issuer/verifier with the given HS256 key
// and token lifetime.
func NewSessions(signKey []byte, ttl time.Duration) *Sessions {
	return &Sessions{signKey: signKey, ttl: ttl}
}

// Issue creates a signed HS256 JWT bound to the identity's email.
func (s *Sessions) Issue(email string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// Verify checks signature, method and expiry, and returns the bound email.
// Every failure maps to errs.ErrUnauthorized.
func (s *Sessions) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", errs.ErrUnauthorized
	}

	v := jwt.NewValidator(jwt.WithLeeway(30 * time.Second))
	if err := v.Validate(&claims); err != nil {
		return "", errs.ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", errs.ErrUnauthorized
	}
	return claims.Subject, nil
}
