package sqlite

import (
	"context"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/domain"
	"github.com/ggjcommunity/auth/internal/auth/store/drivers/sqlite/gen"
)

type exchangeCodesRepo struct {
	q *gen.Queries
}

func (r *exchangeCodesRepo) CreateExchangeCode(ctx context.Context, code domain.ExchangeCode) error {
	err := r.q.CreateExchangeCode(ctx, gen.CreateExchangeCodeParams{
		CodeHash:  code.CodeHash,
		UserID:    code.UserID,
		ExpiresAt: toUnix(code.ExpiresAt),
		CreatedAt: toUnix(code.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *exchangeCodesRepo) ConsumeExchangeCode(
	ctx context.Context,
	codeHash string,
	now time.Time,
) (domain.ExchangeCode, error) {
	row, err := r.q.ConsumeExchangeCode(ctx, gen.ConsumeExchangeCodeParams{
		Now:      toUnix(now),
		CodeHash: codeHash,
	})
	if err != nil {
		return domain.ExchangeCode{}, mapNotFound(err)
	}
	return mapExchangeCode(row), nil
}

func (r *exchangeCodesRepo) DeleteExpiredExchangeCodes(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredExchangeCodes(ctx, toUnix(now))
}
