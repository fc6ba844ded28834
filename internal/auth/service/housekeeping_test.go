package service

import (
	"context"
	"testing"
	"time"

	"github.com/ggjcommunity/auth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	claims := h.claims(t, h.signup(t, "ada@example.com").AccessToken)

	used, _, err := h.exchange.Mint(ctx, claims)
	require.NoError(t, err)
	_, err = h.exchange.Redeem(ctx, used)
	require.NoError(t, err)

	_, _, err = h.exchange.Mint(ctx, claims) // expires below
	require.NoError(t, err)

	h.advance(DefaultExchangeCodeTTL)
	live, _, err := h.exchange.Mint(ctx, claims)
	require.NoError(t, err)

	hk := NewHousekeepingService(h.store, slogx.Discard(), h.metrics, time.Hour)
	hk.Now = h.clock

	n, err := hk.Cleanup(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = hk.Cleanup(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = h.exchange.Redeem(ctx, live)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(h.metrics.Registry, "ggj_auth_exchange_codes_deleted_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestHousekeepingStartStop(t *testing.T) {
	h := newHarness(t)

	hk := NewHousekeepingService(h.store, slogx.Discard(), nil, 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Start()
	hk.Stop()
}

func TestHousekeepingStopIsSafe(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		run  func(hk *HousekeepingService)
	}{
		{"stop without start", func(hk *HousekeepingService) { hk.Stop() }},
		{"stop twice", func(hk *HousekeepingService) {
			hk.Start()
			hk.Stop()
			hk.Stop()
		}},
		{"start after stop", func(hk *HousekeepingService) {
			hk.Stop()
			hk.Start()
			hk.Stop()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hk := NewHousekeepingService(h.store, slogx.Discard(), nil, time.Hour)

			done := make(chan struct{})
			go func() {
				defer close(done)
				tt.run(hk)
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("housekeeping did not stop")
			}
		})
	}
}
