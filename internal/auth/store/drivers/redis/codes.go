// Package redis keeps exchange codes in Redis. Each code is one key that
// expires on its own; consumption is a single GETDEL so a code can be
// redeemed at most once across every service instance.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/store"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the keys written by this driver.
const DefaultPrefix = "ggj-auth:xcode:"

type record struct {
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"expiresAt"`
	CreatedAt int64  `json:"createdAt"`
}

type ExchangeCodes struct {
	rdb    *goredis.Client
	prefix string
}

// Open connects to addr, either host:port or a redis:// URL, and checks the
// connection.
func Open(ctx context.Context, addr string) (*ExchangeCodes, error) {
	var opts *goredis.Options
	if strings.Contains(addr, "://") {
		var err error
		if opts, err = goredis.ParseURL(addr); err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
	} else {
		opts = &goredis.Options{Addr: addr}
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return New(rdb, DefaultPrefix), nil
}

// New wraps an existing client.
func New(rdb *goredis.Client, prefix string) *ExchangeCodes {
	return &ExchangeCodes{rdb: rdb, prefix: prefix}
}

func (c *ExchangeCodes) key(hash string) string { return c.prefix + hash }

func (c *ExchangeCodes) CreateExchangeCode(ctx context.Context, code domain.ExchangeCode) error {
	ttl := code.ExpiresAt.Sub(code.CreatedAt)
	if ttl <= 0 {
		return fmt.Errorf("redis: exchange code expires before it is created")
	}

	buf, err := json.Marshal(record{
		UserID:    code.UserID,
		ExpiresAt: code.ExpiresAt.Unix(),
		CreatedAt: code.CreatedAt.Unix(),
	})
	if err != nil {
		return err
	}

	ok, err := c.rdb.SetNX(ctx, c.key(code.CodeHash), buf, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis: set exchange code: %w", err)
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (c *ExchangeCodes) ConsumeExchangeCode(
	ctx context.Context,
	codeHash string,
	now time.Time,
) (domain.ExchangeCode, error) {
	raw, err := c.rdb.GetDel(ctx, c.key(codeHash)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.ExchangeCode{}, store.ErrNotFound
	}
	if err != nil {
		return domain.ExchangeCode{}, fmt.Errorf("redis: consume exchange code: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ExchangeCode{}, fmt.Errorf("redis: decode exchange code: %w", err)
	}

	code := domain.ExchangeCode{
		CodeHash:  codeHash,
		UserID:    rec.UserID,
		ExpiresAt: time.Unix(rec.ExpiresAt, 0).UTC(),
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
	}
	// The key TTL and the caller's clock can disagree by a little.
	if code.Expired(now) {
		return domain.ExchangeCode{}, store.ErrNotFound
	}

	usedAt := now.UTC().Truncate(time.Second)
	code.UsedAt = &usedAt
	return code, nil
}

// DeleteExpiredExchangeCodes is a no-op: Redis expires keys itself and used
// codes are deleted on consumption.
func (c *ExchangeCodes) DeleteExpiredExchangeCodes(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (c *ExchangeCodes) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ExchangeCodes) Close() error {
	return c.rdb.Close()
}

var _ store.CodeBackend = (*ExchangeCodes)(nil)
