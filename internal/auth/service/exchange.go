package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/metrics"
	"github.com/ggjcommunity/auth/internal/auth/store"
	"github.com/ggjcommunity/auth/pkg/cryptox"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

const DefaultExchangeCodeTTL = 5 * time.Minute

// ExchangeService hands out one-time codes that trade for a session, so a
// signed-in user can carry their session to another surface without
// exposing the token in a URL.
type ExchangeService struct {
	Store         store.Store
	Tokens        Tokens
	Metrics       *metrics.Metrics
	TTL           time.Duration
	TokenLifetime time.Duration
	Now           Clock
}

func (s *ExchangeService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultExchangeCodeTTL
	}
	return s.TTL
}

// Mint creates a code for the user in claims. Impersonated sessions cannot
// mint codes, since the redeemed session would drop the impersonation marker.
func (s *ExchangeService) Mint(ctx context.Context, claims jwtx.Claims) (string, time.Duration, error) {
	l := slogx.FromContext(ctx)

	if claims.Bool(jwtx.ClaimImpersonated) {
		return "", 0, ErrForbidden
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject())
	if errors.Is(err, store.ErrNotFound) {
		return "", 0, ErrUserNotFound
	}
	if err != nil {
		return "", 0, err
	}

	code, err := cryptox.GenerateOpaqueCode()
	if err != nil {
		l.Error("failed to generate exchange code", slog.Any("error", err))
		return "", 0, err
	}

	now := s.Now.now()
	ttl := s.ttl()
	err = s.Store.ExchangeCodes().CreateExchangeCode(ctx, domain.ExchangeCode{
		CodeHash:  cryptox.FingerprintToken(code),
		UserID:    user.ID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		l.Error("failed to store exchange code", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", 0, err
	}

	s.Metrics.TokenIssued("exchange_code")
	return code, ttl, nil
}

// Redeem trades code for a session. A code works once and only before it
// expires.
func (s *ExchangeService) Redeem(ctx context.Context, code string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	code = strings.TrimSpace(code)
	if code == "" {
		s.Metrics.AuthAttempt("exchange", "invalid_code")
		return domain.Session{}, ErrInvalidCode
	}

	stored, err := s.Store.ExchangeCodes().ConsumeExchangeCode(ctx, cryptox.FingerprintToken(code), s.Now.now())
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.AuthAttempt("exchange", "invalid_code")
		return domain.Session{}, ErrInvalidCode
	}
	if err != nil {
		return domain.Session{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, stored.UserID)
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.AuthAttempt("exchange", "invalid_code")
		return domain.Session{}, ErrInvalidCode
	}
	if err != nil {
		return domain.Session{}, err
	}

	session, err := issueSession(s.Tokens, s.TokenLifetime, user, nil)
	if err != nil {
		l.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return domain.Session{}, err
	}

	s.Metrics.AuthAttempt("exchange", "ok")
	s.Metrics.TokenIssued("session")
	return session, nil
}
