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
	"github.com/ggjcommunity/auth/pkg/jwtx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

const (
	DefaultImpersonationLifetime = 60 * time.Minute
	MaxImpersonationLifetime     = 120 * time.Minute
)

// Target names the user to impersonate. Exactly one field is set.
type Target struct {
	UserID string
	Email  string
}

type ImpersonationService struct {
	Store   store.Store
	Tokens  Tokens
	Metrics *metrics.Metrics

	// DefaultLifetime applies when the caller asks for none. Requests above
	// MaxLifetime are capped.
	DefaultLifetime time.Duration
	MaxLifetime     time.Duration
}

func (s *ImpersonationService) lifetime(requested time.Duration) time.Duration {
	def, ceiling := s.DefaultLifetime, s.MaxLifetime
	if def <= 0 {
		def = DefaultImpersonationLifetime
	}
	if ceiling <= 0 {
		ceiling = MaxImpersonationLifetime
	}
	if requested <= 0 {
		requested = def
	}
	return min(requested, ceiling)
}

// Impersonate signs a token for target on behalf of the admin in actor.
func (s *ImpersonationService) Impersonate(ctx context.Context, actor jwtx.Claims, target Target, lifetime time.Duration) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	if actor.Bool(jwtx.ClaimImpersonated) {
		s.Metrics.AuthAttempt("impersonate", "forbidden")
		return domain.Session{}, ErrNestedImpersonation
	}

	actorID := actor.Subject()
	if actor.String(jwtx.ClaimRole) != domain.RoleAdmin.String() || actorID == "" {
		s.Metrics.AuthAttempt("impersonate", "forbidden")
		return domain.Session{}, ErrForbidden
	}

	// The role in the token may be stale.
	admin, err := s.Store.Users().GetUserByID(ctx, actorID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.Metrics.AuthAttempt("impersonate", "forbidden")
		return domain.Session{}, ErrForbidden
	case err != nil:
		return domain.Session{}, err
	case !admin.IsAdmin():
		l.Warn("impersonation by demoted admin", slog.String("actor_id", actorID))
		s.Metrics.AuthAttempt("impersonate", "forbidden")
		return domain.Session{}, ErrForbidden
	}

	user, err := s.lookup(ctx, target)
	if err != nil {
		s.Metrics.AuthAttempt("impersonate", "invalid_target")
		return domain.Session{}, err
	}
	if user.ID == actorID {
		s.Metrics.AuthAttempt("impersonate", "invalid_target")
		return domain.Session{}, &ValidationError{Field: "userId", Reason: "cannot impersonate yourself"}
	}

	session, err := issueSession(s.Tokens, s.lifetime(lifetime), user, jwtx.Claims{
		jwtx.ClaimImpersonated: true,
		jwtx.ClaimActorID:      actorID,
	})
	if err != nil {
		l.Error("failed to issue impersonation token", slog.Any("error", err))
		return domain.Session{}, err
	}
	session.Impersonated = true
	session.ActorID = actorID

	s.Metrics.AuthAttempt("impersonate", "ok")
	s.Metrics.TokenIssued("impersonation")
	l.Info("impersonation started",
		slog.String("actor_id", actorID),
		slog.String("user_id", user.ID),
		slog.Duration("lifetime", session.ExpiresIn),
	)
	return session, nil
}

func (s *ImpersonationService) lookup(ctx context.Context, t Target) (domain.User, error) {
	id := strings.TrimSpace(t.UserID)
	email := strings.ToLower(strings.TrimSpace(t.Email))

	var (
		user domain.User
		err  error
	)
	switch {
	case id != "" && email != "":
		return domain.User{}, &ValidationError{Field: "target", Reason: "give userId or email, not both"}
	case id != "":
		user, err = s.Store.Users().GetUserByID(ctx, id)
	case email != "":
		user, err = s.Store.Users().GetUserByEmail(ctx, email)
	default:
		return domain.User{}, &ValidationError{Field: "target", Reason: "userId or email is required"}
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}
