package jwtx

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registered claim names managed by the Service. Values supplied by callers
// under these names are always replaced at issuance.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimIssuer    = "iss"
)

// Platform claim names embedded by the auth handlers.
const (
	ClaimUserID       = "userId"
	ClaimEmail        = "email"
	ClaimDisplayName  = "displayName"
	ClaimRole         = "role"
	ClaimImpersonated = "impersonated"
	ClaimActorID      = "actorId"
)

// Claims is the payload of a token. Values are limited to what JSON can
// carry; numbers come back from Verify as float64.
type Claims map[string]any

// String returns the claim as a string, or "" if it is missing or not a
// string.
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// Bool returns the claim as a bool, or false if it is missing or not a bool.
func (c Claims) Bool(name string) bool {
	b, _ := c[name].(bool)
	return b
}

// Int64 returns a numeric claim truncated to an integer.
func (c Claims) Int64(name string) (int64, bool) {
	switch v := c[name].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

// number returns a numeric claim as float64, the type JSON decodes into.
func (c Claims) number(name string) (float64, bool) {
	switch v := c[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// IssuedAt returns the iat claim in UTC, if present and numeric.
func (c Claims) IssuedAt() (time.Time, bool) {
	return numericDate(jwt.MapClaims(c).GetIssuedAt())
}

// ExpiresAt returns the exp claim in UTC, if present and numeric.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return numericDate(jwt.MapClaims(c).GetExpirationTime())
}

// Issuer returns the iss claim.
func (c Claims) Issuer() string {
	return c.String(ClaimIssuer)
}

// Subject returns the platform user id claim.
func (c Claims) Subject() string {
	return c.String(ClaimUserID)
}

// Clone returns a shallow copy of c that is safe to mutate.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c)+3)
	for k, v := range c {
		out[k] = v
	}
	return out
}

func numericDate(d *jwt.NumericDate, err error) (time.Time, bool) {
	if err != nil || d == nil {
		return time.Time{}, false
	}
	return d.Time.UTC(), true
}
