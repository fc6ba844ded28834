package store

import (
	"context"
	"errors"
)

// CodeBackend is an ExchangeCodes implementation with its own connection.
type CodeBackend interface {
	ExchangeCodes
	Ping(ctx context.Context) error
	Close() error
}

type splitStore struct {
	Store
	codes CodeBackend
}

// WithExchangeCodes returns a Store that serves exchange codes from codes and
// everything else from base. Ping and Close cover both.
func WithExchangeCodes(base Store, codes CodeBackend) Store {
	return &splitStore{Store: base, codes: codes}
}

func (s *splitStore) ExchangeCodes() ExchangeCodes { return s.codes }

func (s *splitStore) Ping(ctx context.Context) error {
	return errors.Join(s.Store.Ping(ctx), s.codes.Ping(ctx))
}

func (s *splitStore) Close() error {
	return errors.Join(s.codes.Close(), s.Store.Close())
}
