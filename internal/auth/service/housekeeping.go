package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tether/internal/auth/store"
)

// DefaultStaleRetention is how long invalidated or expired session rows
// are kept around for the session listing before being purged.
const DefaultStaleRetention = 7 * 24 * time.Hour

// HousekeepingService periodically sweeps expired session tokens and
// purges stale rows so the session_tokens table does not grow without
// bound.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval and stale-row retention. Zero or negative values fall back to
// 1 hour and DefaultStaleRetention.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = DefaultStaleRetention
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup marks expired tokens invalid, then deletes dead rows older than
// the retention window. The two steps are independent so a failure in one
// does not stop the other.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	swept, err := s.Store.SessionTokens().SweepAllExpiredTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to sweep expired session tokens", "error", err)
	} else if swept > 0 {
		s.Logger.Debug("swept expired session tokens", "count", swept)
	}

	purged, err := s.Store.SessionTokens().DeleteStaleTokens(ctx, now.Add(-s.Retention))
	if err != nil {
		s.Logger.Error("failed to purge stale session tokens", "error", err)
	} else if purged > 0 {
		s.Logger.Debug("purged stale session tokens", "count", purged)
	}

	s.Logger.Info("housekeeping cleanup completed", "swept", swept, "purged", purged)
}
