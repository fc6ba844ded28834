package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ggjcommunity/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	return Config{
		JWTSecret:                "app-test-secret",
		TokenLifetime:            time.Hour,
		ImpersonationLifetime:    time.Hour,
		ImpersonationMaxLifetime: 2 * time.Hour,
		ExchangeCodeTTL:          time.Minute,
		DatabaseFile:             filepath.Join(t.TempDir(), "auth.db"),
		BootstrapAdminEmail:      "root@example.com",
		Env:                      "test",
		LogLevel:                 "error",
		LogFormat:                "text",
		Port:                     0,
		ShutdownGracePeriod:      time.Second,
		HousekeepingInterval:     time.Hour,
	}
}

func TestNewRejectsMissingSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""

	_, err := New(cfg)
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestApplicationServes(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	empty, err := application.db.Users().IsEmpty(context.Background())
	require.NoError(t, err)
	require.False(t, empty, "bootstrap admin should exist")

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)
	client := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	sess, err := client.Signup(ctx, authsdk.SignupRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	verified, err := client.Verify(ctx, sess.AccessToken())
	require.NoError(t, err)
	require.True(t, verified.Valid)
	iat, exp := verified.Claims["iat"].(float64), verified.Claims["exp"].(float64)
	require.Equal(t, cfg.TokenLifetime.Seconds(), exp-iat)

	code, err := sess.MintExchangeCode(ctx)
	require.NoError(t, err)
	require.Equal(t, 60, code.ExpiresIn)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

func TestDatabaseDSN(t *testing.T) {
	require.Equal(t, ":memory:", databaseDSN(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", databaseDSN("file:x.db?mode=ro"))
	require.Equal(t, "file:auth.db?_pragma=journal_mode(WAL)", databaseDSN("auth.db"))
}
