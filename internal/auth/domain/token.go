package domain

import (
	"time"

	"github.com/ggjcommunity/auth/pkg/jwtx"
)

// Session is what sign in, signup, exchange and impersonation hand back: the
// signed access token plus the user it speaks for.
type Session struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        User

	// Impersonated is set when an admin minted the token for User.
	Impersonated bool
	ActorID      string
}

// ExchangeCode is a stored one-time code. Only the SHA-256 fingerprint of the
// code is kept; the plaintext goes to the caller once.
type ExchangeCode struct {
	CodeHash  string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at now.
func (c ExchangeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// UserClaims builds the platform claims carried in an access token for u.
// The token service adds iat, exp and iss on top.
func UserClaims(u User) jwtx.Claims {
	return jwtx.Claims{
		jwtx.ClaimUserID:      u.ID,
		jwtx.ClaimEmail:       u.Email,
		jwtx.ClaimDisplayName: u.DisplayName,
		jwtx.ClaimRole:        u.Role.String(),
	}
}
