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
	"github.com/ggjcommunity/auth/pkg/idx"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

// dummyHash is verified against when the email is unknown, so both failure
// paths cost one PBKDF2 derivation.
const dummyHash = "AAAAAAAAAAAAAAAA:hUPUoleQ6ABAOA41cnf6knrHA04Uex29YMDvdv0b0jY"

type AuthService struct {
	Store         store.Store
	Tokens        Tokens
	Metrics       *metrics.Metrics
	TokenLifetime time.Duration
	Now           Clock
	IDs           *idx.Generator
}

// LoginResult is a session plus the outcome of the last-login bookkeeping.
type LoginResult struct {
	domain.Session
	LastLogin Outcome
}

func (s *AuthService) newID() string {
	if s.IDs == nil {
		return idx.New().String()
	}
	return s.IDs.New().String()
}

// Signup creates a member account and signs it in.
func (s *AuthService) Signup(ctx context.Context, email, password, displayName string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	email, err := normalizeEmail(email)
	if err != nil {
		s.Metrics.AuthAttempt("signup", "invalid_input")
		return domain.Session{}, err
	}
	if err := validatePassword(password); err != nil {
		s.Metrics.AuthAttempt("signup", "invalid_input")
		return domain.Session{}, err
	}
	displayName, err = displayNameFor(displayName, email)
	if err != nil {
		s.Metrics.AuthAttempt("signup", "invalid_input")
		return domain.Session{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.Session{}, err
	}

	now := s.Now.now()
	user := domain.User{
		ID:           s.newID(),
		Email:        email,
		DisplayName:  displayName,
		Role:         domain.RoleMember,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.AuthAttempt("signup", "email_taken")
			return domain.Session{}, ErrEmailTaken
		}
		l.Error("failed to create user", slog.Any("error", err))
		return domain.Session{}, err
	}

	session, err := issueSession(s.Tokens, s.TokenLifetime, user, nil)
	if err != nil {
		l.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return domain.Session{}, err
	}

	s.Metrics.AuthAttempt("signup", "ok")
	s.Metrics.TokenIssued("session")
	l.Info("user signed up", slog.String("user_id", user.ID))
	return session, nil
}

// Login checks an email and password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.Metrics.AuthAttempt("login", "invalid_input")
		return LoginResult{}, &ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = cryptox.VerifyPassword(password, dummyHash)
		s.Metrics.AuthAttempt("login", "invalid_credentials")
		return LoginResult{}, ErrInvalidCredentials
	case err != nil:
		return LoginResult{}, err
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		l.Info("login rejected", slog.String("user_id", user.ID))
		s.Metrics.AuthAttempt("login", "invalid_credentials")
		return LoginResult{}, ErrInvalidCredentials
	}

	session, err := issueSession(s.Tokens, s.TokenLifetime, user, nil)
	if err != nil {
		l.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return LoginResult{}, err
	}

	now := s.Now.now()
	res := LoginResult{Session: session}
	res.LastLogin = s.touchLastLogin(ctx, user.ID, now)
	if res.LastLogin.OK() {
		res.User.LastLoginAt = &now
	}

	s.Metrics.AuthAttempt("login", "ok")
	s.Metrics.TokenIssued("session")
	return res, nil
}

func (s *AuthService) touchLastLogin(ctx context.Context, userID string, at time.Time) Outcome {
	var o Outcome
	if err := s.Store.Users().TouchLastLogin(ctx, userID, at); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			o.Ignored = true
		} else {
			o.Err = err
		}
	}
	return o.record(ctx, s.Metrics, "touch_last_login")
}

// ChangePassword replaces the credential record after re-checking the
// current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	l := slogx.FromContext(ctx)

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	if !cryptox.VerifyPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash, s.Now.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	l.Info("password changed", slog.String("user_id", user.ID))
	return nil
}

// Me returns the user with id userID.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// Verify checks token and returns the tagged result.
func (s *AuthService) Verify(token string) jwtx.Result {
	res := jwtx.Check(s.Tokens, token)
	if res.Valid {
		s.Metrics.TokenVerified("valid")
	} else {
		s.Metrics.TokenVerified(res.Error)
	}
	return res
}
