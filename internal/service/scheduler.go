package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher reloads the whitelist without blocking
type Refresher interface {
	RefreshInBackground()
}

// HistoryCleaner prunes old drop records
type HistoryCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// RefreshScheduler runs the periodic whitelist refresh and history cleanup
type RefreshScheduler struct {
	refresher Refresher
	history   HistoryCleaner // optional
	logger    *slog.Logger

	interval        time.Duration // 0 disables periodic refresh
	cleanupInterval time.Duration
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewRefreshScheduler creates a new refresh scheduler
func NewRefreshScheduler(
	refresher Refresher,
	history HistoryCleaner,
	interval time.Duration,
	logger *slog.Logger,
) *RefreshScheduler {
	return &RefreshScheduler{
		refresher:       refresher,
		history:         history,
		logger:          logger.With("component", "Scheduler"),
		interval:        interval,
		cleanupInterval: 6 * time.Hour,
	}
}

// Start starts the scheduler
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.interval > 0 {
		s.wg.Add(1)
		go s.refreshLoop()
	}
	if s.history != nil {
		s.wg.Add(1)
		go s.cleanupLoop()
	}

	s.logger.Info("scheduler started", "refresh_interval", s.interval.String())
}

// Stop stops the scheduler
func (s *RefreshScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// refreshLoop is the periodic whitelist refresh loop
func (s *RefreshScheduler) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refresher.RefreshInBackground()
		}
	}
}

// cleanupLoop is the cleanup loop (runs every 6 hours)
func (s *RefreshScheduler) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup prunes expired drop records
func (s *RefreshScheduler) cleanup() {
	count, err := s.history.Cleanup(s.ctx)
	if err != nil {
		s.logger.Error("cleanup failed", "error", err)
		return
	}

	if count > 0 {
		s.logger.Info("cleaned up old drops", "count", count)
	}
}
