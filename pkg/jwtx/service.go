package jwtx

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ggjcommunity/auth/pkg/b64x"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultIssuer is stamped into the iss claim of every token.
	DefaultIssuer = "ggj-auth"

	// DefaultLifetime applies when the caller does not ask for one.
	DefaultLifetime = 1440 * time.Minute

	// MinLifetime is the floor for every token, whatever the caller asked.
	MinLifetime = 5 * time.Minute
)

// header is fixed; the signature covers its encoded form, so it is encoded
// once.
var encodedHeader = b64x.Encode([]byte(`{"alg":"HS256","typ":"JWT"}`))

// Service issues and verifies HS256 tokens under a single shared secret.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultLifetime overrides DefaultLifetime for Issue.
func WithDefaultLifetime(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lifetime = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a Service keyed by secret. An empty secret is a
// deployment error and is reported as ErrMissingSecret.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	s := &Service{
		key:      []byte(secret),
		lifetime: DefaultLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue mints a token valid for the service's default lifetime.
func (s *Service) Issue(claims Claims) (string, error) {
	return s.IssueWithLifetime(claims, s.lifetime)
}

// IssueWithLifetime mints a token for claims. The lifetime is raised to
// MinLifetime when shorter; ceilings are the caller's business. The iat, exp
// and iss claims are always computed here and replace any caller values.
func (s *Service) IssueWithLifetime(claims Claims, lifetime time.Duration) (string, error) {
	now := s.now().Unix()
	lifetime = max(lifetime, MinLifetime)
	exp := now + int64(lifetime/time.Second)

	full := claims.Clone()
	full[ClaimIssuedAt] = now
	full[ClaimExpiresAt] = exp
	full[ClaimIssuer] = DefaultIssuer

	payload, err := json.Marshal(full)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	signingString := encodedHeader + "." + b64x.Encode(payload)

	sig, err := jwt.SigningMethodHS256.Sign(signingString, s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	return signingString + "." + b64x.Encode(sig), nil
}

// Verify checks the signature and expiry of token and returns its claims.
// It never panics; every failure is one of ErrMalformed,
// ErrInvalidSignature, ErrExpired or ErrVerificationFailed.
//
// A payload without exp is accepted and never expires.
func (s *Service) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}

	sig, err := b64x.Decode(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrVerificationFailed, err)
	}

	signingString := parts[0] + "." + parts[1]
	if err := jwt.SigningMethodHS256.Verify(signingString, sig, s.key); err != nil {
		return nil, ErrInvalidSignature
	}

	payload, err := b64x.Decode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrVerificationFailed, err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrVerificationFailed, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrVerificationFailed)
	}

	if _, present := claims[ClaimExpiresAt]; present {
		// Compared as float64 so exp beyond the int64 range cannot wrap.
		exp, ok := claims.number(ClaimExpiresAt)
		if !ok {
			return nil, fmt.Errorf("%w: exp is not numeric", ErrVerificationFailed)
		}
		if exp < float64(s.now().Unix()) {
			return nil, ErrExpired
		}
	}

	return claims, nil
}
