package store

import (
	"context"
	"errors"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	ExchangeCodes() ExchangeCodes

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches email case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID). A
	// duplicate email returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the credential record and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string, at time.Time) error

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type ExchangeCodes interface {
	// CreateExchangeCode stores a freshly minted code by its fingerprint.
	CreateExchangeCode(ctx context.Context, code domain.ExchangeCode) error

	// ConsumeExchangeCode marks the code used and returns it, atomically. A
	// code that is unknown, expired at now or already used returns
	// ErrNotFound, so at most one caller ever wins.
	ConsumeExchangeCode(ctx context.Context, codeHash string, now time.Time) (domain.ExchangeCode, error)

	// DeleteExpiredExchangeCodes removes expired and used codes and reports
	// how many were removed.
	DeleteExpiredExchangeCodes(ctx context.Context, now time.Time) (int64, error)
}
