package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/store"
	"github.com/ggjcommunity/auth/pkg/cryptox"
	"github.com/ggjcommunity/auth/pkg/idx"
	"github.com/ggjcommunity/auth/pkg/slogx"
)

var ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")

type BootstrapService struct {
	Store store.Store
	Now   Clock
}

// BootstrapResult reports what EnsureAdmin did. Password is only set when an
// admin was created.
type BootstrapResult struct {
	Created  bool
	UserID   string
	Password string
}

// EnsureAdmin creates an admin account for email with a generated password
// when there are no users yet. An empty email or a populated user table is a
// no-op.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, email string) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(email) == "" {
		return BootstrapResult{}, nil
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return BootstrapResult{}, err
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return BootstrapResult{}, err
	}
	if !empty {
		l.Debug("users exist, skipping admin bootstrap")
		return BootstrapResult{}, nil
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		l.Error("failed to generate admin password", slog.Any("error", err))
		return BootstrapResult{}, ErrBootstrapFailedToCreateAdmin
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return BootstrapResult{}, ErrBootstrapFailedToCreateAdmin
	}

	name, _ := displayNameFor("", email)
	now := s.Now.now()
	admin := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  name,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		l.Error("failed to create admin user",
			slog.String("admin_user_id", admin.ID),
			slog.Any("error", err),
		)
		return BootstrapResult{}, ErrBootstrapFailedToCreateAdmin
	}

	l.Warn("bootstrapped admin user, change this password after first login",
		slog.String("admin_user_id", admin.ID),
		slog.String("email", email),
		slog.String("password", password),
	)
	return BootstrapResult{Created: true, UserID: admin.ID, Password: password}, nil
}
