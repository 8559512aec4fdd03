package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kiasamouie/loopy/pkg/errors"
)

// clockSkewBuffer is subtracted from the issued-at claim so tokens are not
// rejected by an upstream clock that runs slightly behind.
const clockSkewBuffer = 10 * time.Second

// Signer mints the HS256 tokens the Loopy Loyalty API accepts as bearer
// credentials. A Signer computes a string and nothing else; callers decide
// whether to cache the result.
type Signer struct {
	apiKey    string
	apiSecret string
	username  string
	ttl       time.Duration
	now       func() time.Time
}

// NewSigner creates a signer for the given API credentials. ttl is the
// token lifetime from generation; expired tokens are never refreshed
// proactively, a request made with one simply fails upstream.
func NewSigner(apiKey, apiSecret, username string, ttl time.Duration) *Signer {
	return &Signer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		username:  username,
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Sign produces the three-segment signed token: base64url(header),
// base64url(payload) and base64url(HMAC-SHA256 signature) joined by dots.
// The payload carries the API key as subject identity plus the account
// username. Deterministic for a fixed clock.
func (s *Signer) Sign() (string, error) {
	if s.apiSecret == "" {
		return "", errors.ErrMissingSecret
	}

	now := s.now()
	claims := jwt.MapClaims{
		"uid":      s.apiKey,
		"username": s.username,
		"iat":      now.Add(-clockSkewBuffer).Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.apiSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
