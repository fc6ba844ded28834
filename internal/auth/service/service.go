package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/metrics"
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCode        = errors.New("invalid_code")

	// ErrNestedImpersonation also matches ErrForbidden.
	ErrNestedImpersonation = fmt.Errorf("%w: cannot impersonate while impersonating", ErrForbidden)
)

const (
	minPasswordLength   = 8
	maxPasswordBytes    = 256
	maxDisplayNameRunes = 100
)

// ValidationError describes why a field was rejected. It matches
// ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Tokens issues and verifies access tokens.
type Tokens interface {
	jwtx.Issuer
	jwtx.Verifier
}

// Clock returns the current time. A nil Clock reads the wall clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Outcome records how a best-effort side effect went. Such effects never
// fail the operation that triggered them.
type Outcome struct {
	Err     error
	Ignored bool // skipped on purpose, e.g. the row vanished
}

// OK reports whether the side effect happened.
func (o Outcome) OK() bool { return o.Err == nil && !o.Ignored }

func (o Outcome) label() string {
	switch {
	case o.Err != nil:
		return "failed"
	case o.Ignored:
		return "ignored"
	default:
		return "ok"
	}
}

// record logs and counts a best-effort outcome that did not succeed.
func (o Outcome) record(ctx context.Context, m *metrics.Metrics, op string) Outcome {
	if o.OK() {
		return o
	}
	m.BestEffort(op, o.label())
	slogx.FromContext(ctx).Warn("best-effort side effect did not complete",
		slog.String("op", op),
		slog.String("outcome", o.label()),
		slog.Any("error", o.Err),
	)
	return o
}

// normalizeEmail trims and lowercases email and checks it is a bare address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", &ValidationError{Field: "email", Reason: "not a valid address"}
	}
	return email, nil
}

func validatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	case len(password) > maxPasswordBytes:
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}

// displayNameFor trims name, falling back to the local part of email.
func displayNameFor(name, email string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if utf8.RuneCountInString(name) > maxDisplayNameRunes {
		return "", &ValidationError{Field: "displayName", Reason: fmt.Sprintf("must be at most %d characters", maxDisplayNameRunes)}
	}
	return name, nil
}

// sessionLifetime applies the token service's floor so ExpiresIn matches the
// exp claim.
func sessionLifetime(d time.Duration) time.Duration {
	if d <= 0 {
		d = jwtx.DefaultLifetime
	}
	return max(d, jwtx.MinLifetime)
}

// issueSession signs the platform claims of u plus extra.
func issueSession(t Tokens, lifetime time.Duration, u domain.User, extra jwtx.Claims) (domain.Session, error) {
	lifetime = sessionLifetime(lifetime)

	claims := domain.UserClaims(u)
	for k, v := range extra {
		claims[k] = v
	}

	token, err := t.IssueWithLifetime(claims, lifetime)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		AccessToken: token,
		ExpiresIn:   lifetime,
		User:        u,
	}, nil
}
