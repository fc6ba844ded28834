package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ggjcommunity/auth/internal/auth/metrics"
	"github.com/ggjcommunity/auth/internal/auth/store"
)

// HousekeepingService periodically removes expired and used exchange codes
// to prevent unbounded growth of the exchange_codes table.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Interval time.Duration
	Now      Clock

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, m *metrics.Metrics, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Metrics:  m,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
// Calls after the first, or after Stop, do nothing.
func (s *HousekeepingService) Start() {
	s.startOnce.Do(func() {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.started.Store(true)
		go s.run()
		s.Logger.Info("housekeeping service started", "interval", s.Interval)
	})
}

// Stop blocks until the worker has finished any in-progress cleanup.
// It is safe to call more than once, and without a prior Start.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.doneCh
		}
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass and returns how many codes were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.Store.ExchangeCodes().DeleteExpiredExchangeCodes(ctx, s.Now.now())
	if err != nil {
		s.Logger.Error("failed to delete expired exchange codes", "error", err)
		return 0, err
	}

	s.Metrics.CodesDeleted(n)
	s.Logger.Debug("housekeeping cleanup completed", "deleted_exchange_codes", n)
	return n, nil
}
