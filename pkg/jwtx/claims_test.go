package jwtx_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestClaimsAccessors(t *testing.T) {
	c := jwtx.Claims{
		"userId":       "u1",
		"impersonated": true,
		"iat":          float64(1700000000),
		"exp":          json.Number("1700000300"),
		"iss":          "ggj-auth",
		"count":        3,
	}

	t.Run("strings", func(t *testing.T) {
		require.Equal(t, "u1", c.String(jwtx.ClaimUserID))
		require.Equal(t, "u1", c.Subject())
		require.Equal(t, "ggj-auth", c.Issuer())
		require.Empty(t, c.String("missing"))
		require.Empty(t, c.String("impersonated"), "non-string claims read as empty")
	})

	t.Run("bools", func(t *testing.T) {
		require.True(t, c.Bool(jwtx.ClaimImpersonated))
		require.False(t, c.Bool("userId"))
		require.False(t, c.Bool("missing"))
	})

	t.Run("numbers", func(t *testing.T) {
		n, ok := c.Int64("iat")
		require.True(t, ok)
		require.EqualValues(t, 1700000000, n)

		n, ok = c.Int64("exp")
		require.True(t, ok)
		require.EqualValues(t, 1700000300, n)

		n, ok = c.Int64("count")
		require.True(t, ok)
		require.EqualValues(t, 3, n)

		_, ok = c.Int64("userId")
		require.False(t, ok)
	})

	t.Run("dates", func(t *testing.T) {
		iat, ok := c.IssuedAt()
		require.True(t, ok)
		require.Equal(t, time.Unix(1700000000, 0).UTC(), iat)
		require.Equal(t, time.UTC, iat.Location())

		exp, ok := c.ExpiresAt()
		require.True(t, ok)
		require.Equal(t, time.Unix(1700000300, 0).UTC(), exp)
		require.Equal(t, time.UTC, exp.Location())

		_, ok = jwtx.Claims{}.ExpiresAt()
		require.False(t, ok)

		_, ok = jwtx.Claims{"exp": "tomorrow"}.ExpiresAt()
		require.False(t, ok)
	})
}

func TestClaimsClone(t *testing.T) {
	orig := jwtx.Claims{"role": "member"}
	cp := orig.Clone()
	cp["role"] = "admin"

	require.Equal(t, "member", orig.String("role"))
	require.Equal(t, "admin", cp.String("role"))

	var nilClaims jwtx.Claims
	require.NotNil(t, nilClaims.Clone())
}
