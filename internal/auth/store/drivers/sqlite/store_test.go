package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/store"
	"github.com/ggjcommunity/auth/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T, dsn string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMemStore(t *testing.T) *sqlite.Store {
	return newStore(t, ":memory:")
}

func seedUser(t *testing.T, s store.Store, id, email string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           id,
		Email:        email,
		DisplayName:  "Ada Lovelace",
		Role:         domain.RoleMember,
		PasswordHash: "salt:hash",
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "auth.db")
	s := newStore(t, dsn)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)
	users := s.Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	seedUser(t, s, "01HZX0000000000000000000U1", "Ada@Example.com")

	empty, err = users.IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	t.Run("get by id", func(t *testing.T) {
		u, err := users.GetUserByID(ctx, "01HZX0000000000000000000U1")
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", u.Email, "emails are stored lowercased")
		require.Equal(t, "Ada Lovelace", u.DisplayName)
		require.Equal(t, domain.RoleMember, u.Role)
		require.Equal(t, "salt:hash", u.PasswordHash)
		require.Equal(t, t0, u.CreatedAt)
		require.Nil(t, u.LastLoginAt)
	})

	t.Run("get by email is case insensitive", func(t *testing.T) {
		for _, email := range []string{"ada@example.com", "ADA@EXAMPLE.COM", " Ada@Example.com "} {
			u, err := users.GetUserByEmail(ctx, email)
			require.NoError(t, err, email)
			require.Equal(t, "01HZX0000000000000000000U1", u.ID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := users.GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = users.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := users.CreateUser(ctx, domain.User{
			ID:           "01HZX0000000000000000000U2",
			Email:        "ADA@example.com",
			Role:         domain.RoleMember,
			PasswordHash: "x:y",
			CreatedAt:    t0,
			UpdatedAt:    t0,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := users.CreateUser(ctx, domain.User{
			ID:           "01HZX0000000000000000000U1",
			Email:        "other@example.com",
			Role:         domain.RoleMember,
			PasswordHash: "x:y",
			CreatedAt:    t0,
			UpdatedAt:    t0,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		err := users.CreateUser(ctx, domain.User{
			ID:           "01HZX0000000000000000000U3",
			Email:        "root@example.com",
			Role:         domain.Role("root"),
			PasswordHash: "x:y",
			CreatedAt:    t0,
			UpdatedAt:    t0,
		})
		require.Error(t, err)
	})

	t.Run("update password hash", func(t *testing.T) {
		later := t0.Add(time.Hour)
		require.NoError(t, users.UpdatePasswordHash(ctx, "01HZX0000000000000000000U1", "new:hash", later))

		u, err := users.GetUserByID(ctx, "01HZX0000000000000000000U1")
		require.NoError(t, err)
		require.Equal(t, "new:hash", u.PasswordHash)
		require.Equal(t, later, u.UpdatedAt)
		require.Equal(t, t0, u.CreatedAt)

		require.ErrorIs(t, users.UpdatePasswordHash(ctx, "missing", "a:b", later), store.ErrNotFound)
	})

	t.Run("touch last login", func(t *testing.T) {
		at := t0.Add(2 * time.Hour)
		require.NoError(t, users.TouchLastLogin(ctx, "01HZX0000000000000000000U1", at))

		u, err := users.GetUserByID(ctx, "01HZX0000000000000000000U1")
		require.NoError(t, err)
		require.NotNil(t, u.LastLoginAt)
		require.Equal(t, at, *u.LastLoginAt)

		require.ErrorIs(t, users.TouchLastLogin(ctx, "missing", at), store.ErrNotFound)
	})
}

func TestExchangeCodes(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)
	seedUser(t, s, "u1", "ada@example.com")
	codes := s.ExchangeCodes()

	create := func(hash string, ttl time.Duration) {
		require.NoError(t, codes.CreateExchangeCode(ctx, domain.ExchangeCode{
			CodeHash:  hash,
			UserID:    "u1",
			ExpiresAt: t0.Add(ttl),
			CreatedAt: t0,
		}))
	}

	t.Run("consume once", func(t *testing.T) {
		create("h-once", 5*time.Minute)

		got, err := codes.ConsumeExchangeCode(ctx, "h-once", t0.Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, "u1", got.UserID)
		require.Equal(t, t0.Add(5*time.Minute), got.ExpiresAt)
		require.NotNil(t, got.UsedAt)
		require.Equal(t, t0.Add(time.Minute), *got.UsedAt)

		_, err = codes.ConsumeExchangeCode(ctx, "h-once", t0.Add(time.Minute))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		create("h-exp", 5*time.Minute)

		_, err := codes.ConsumeExchangeCode(ctx, "h-exp", t0.Add(5*time.Minute))
		require.ErrorIs(t, err, store.ErrNotFound, "a code is dead at its expiry instant")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := codes.ConsumeExchangeCode(ctx, "nope", t0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate hash", func(t *testing.T) {
		create("h-dup", time.Minute)
		err := codes.CreateExchangeCode(ctx, domain.ExchangeCode{
			CodeHash: "h-dup", UserID: "u1", ExpiresAt: t0, CreatedAt: t0,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown user violates foreign key", func(t *testing.T) {
		err := codes.CreateExchangeCode(ctx, domain.ExchangeCode{
			CodeHash: "h-fk", UserID: "ghost", ExpiresAt: t0.Add(time.Minute), CreatedAt: t0,
		})
		require.Error(t, err)
	})

	t.Run("delete expired and used", func(t *testing.T) {
		create("h-live", time.Hour)

		// h-once is used, h-exp and h-dup are expired at t0+10m, h-live survives.
		n, err := codes.DeleteExpiredExchangeCodes(ctx, t0.Add(10*time.Minute))
		require.NoError(t, err)
		require.Equal(t, int64(3), n)

		_, err = codes.ConsumeExchangeCode(ctx, "h-live", t0.Add(10*time.Minute))
		require.NoError(t, err)
	})
}

func TestConsumeExchangeCodeConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, filepath.Join(t.TempDir(), "auth.db"))
	seedUser(t, s, "u1", "ada@example.com")

	require.NoError(t, s.ExchangeCodes().CreateExchangeCode(ctx, domain.ExchangeCode{
		CodeHash: "race", UserID: "u1", ExpiresAt: t0.Add(time.Minute), CreatedAt: t0,
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ExchangeCodes().ConsumeExchangeCode(ctx, "race", t0); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}
