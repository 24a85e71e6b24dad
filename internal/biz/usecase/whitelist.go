package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// CacheConfig contains whitelist cache configuration
type CacheConfig struct {
	Timeout time.Duration // Per-refresh deadline
	SheetID string        // Shown in the ready message when set
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Timeout: 10 * time.Second,
	}
}

// SnapshotProvider exposes the current whitelist snapshot
type SnapshotProvider interface {
	CurrentSnapshot() *domain.WhitelistSnapshot
}

// WhitelistCache holds the current whitelist snapshot and refreshes it
// from the remote endpoint. Snapshots are swapped atomically; readers never
// take a lock.
type WhitelistCache struct {
	source repo.WhitelistSource
	store  repo.WhitelistStore // optional
	sink   repo.NotificationSink
	logger *slog.Logger
	config CacheConfig

	current atomic.Pointer[domain.WhitelistSnapshot]
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewWhitelistCache creates a cache holding the empty snapshot
func NewWhitelistCache(
	source repo.WhitelistSource,
	store repo.WhitelistStore,
	sink repo.NotificationSink,
	logger *slog.Logger,
	config CacheConfig,
) *WhitelistCache {
	if config.Timeout <= 0 {
		config.Timeout = DefaultCacheConfig().Timeout
	}
	c := &WhitelistCache{
		source: source,
		store:  store,
		sink:   sink,
		logger: logger.With("component", "WhitelistCache"),
		config: config,
		now:    time.Now,
	}
	c.current.Store(domain.EmptySnapshot)
	return c
}

// CurrentSnapshot returns the latest published snapshot. Never blocks.
func (c *WhitelistCache) CurrentSnapshot() *domain.WhitelistSnapshot {
	return c.current.Load()
}

// Seed publishes the stored last-known-good snapshot, if any
func (c *WhitelistCache) Seed(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stored whitelist: %w", err)
	}
	if snap == nil {
		return nil
	}

	// A refresh may already have landed; never overwrite it with older data.
	c.current.CompareAndSwap(domain.EmptySnapshot, snap)
	c.logger.Info("seeded whitelist from store", "count", snap.Count(), "updated_at", snap.UpdatedAt())
	return nil
}

// Refresh reloads the whitelist in the background and returns immediately.
// An empty endpoint clears the snapshot before Refresh returns.
func (c *WhitelistCache) Refresh(endpointURL string, announce bool) {
	if strings.TrimSpace(endpointURL) == "" {
		c.RefreshNow(context.Background(), endpointURL, announce)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
		defer cancel()
		c.RefreshNow(ctx, endpointURL, announce)
	}()
}

// RefreshNow reloads the whitelist synchronously. On any failure the
// previous snapshot stays published and the error is returned.
func (c *WhitelistCache) RefreshNow(ctx context.Context, endpointURL string, announce bool) (*domain.WhitelistSnapshot, error) {
	endpointURL = strings.TrimSpace(endpointURL)
	if endpointURL == "" {
		c.current.Store(domain.EmptySnapshot)
		if c.store != nil {
			if err := c.store.Clear(ctx); err != nil {
				c.logger.Warn("failed to clear stored whitelist", "error", err)
			}
		}
		c.logger.Info("whitelist endpoint not configured, cleared snapshot")
		c.announce(announce, statusMessage(domain.ErrNotConfigured))
		return domain.EmptySnapshot, domain.ErrNotConfigured
	}

	payload, err := c.source.Fetch(ctx, endpointURL)
	if err != nil {
		c.logFailure(err)
		c.announce(announce, statusMessage(err))
		return nil, err
	}
	if payload == nil {
		c.logFailure(domain.ErrEmptyPayload)
		c.announce(announce, statusMessage(domain.ErrEmptyPayload))
		return nil, domain.ErrEmptyPayload
	}

	snap := domain.SnapshotFromPayload(payload, c.now())
	c.current.Store(snap)

	if c.store != nil {
		if err := c.store.Save(ctx, snap); err != nil {
			c.logger.Warn("failed to persist whitelist", "error", err)
		}
	}

	c.logger.Info("whitelist refreshed", "count", snap.Count(), "unique", snap.SetSize(), "updated_at", snap.UpdatedAt())
	c.announce(announce, readyMessage(snap, c.config.SheetID))
	return snap, nil
}

// Wait blocks until background refreshes have finished
func (c *WhitelistCache) Wait() {
	c.wg.Wait()
}

func (c *WhitelistCache) announce(enabled bool, message string) {
	if !enabled || c.sink == nil {
		return
	}
	c.sink.Notify(domain.ChannelGameMessage, "", message)
}

func (c *WhitelistCache) logFailure(err error) {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		c.logger.Warn("whitelist endpoint returned error status", "status", statusErr.Code)
		return
	}
	c.logger.Warn("whitelist refresh failed", "kind", domain.ErrorKind(err), "error", err)
}

// readyMessage reports the loaded item count, e.g.
// "Drop whitelist ready for 3 items (updated 2024-05-01)."
func readyMessage(snap *domain.WhitelistSnapshot, sheetID string) string {
	var sb strings.Builder
	n := snap.Count()
	sb.WriteString(fmt.Sprintf("Drop whitelist ready for %d %s", n, pluralize(n, "item", "items")))
	if updated := snap.UpdatedAt(); updated != "" {
		sb.WriteString(fmt.Sprintf(" (updated %s)", updated))
	}
	sb.WriteString(".")
	if sheetID = strings.TrimSpace(sheetID); sheetID != "" {
		sb.WriteString(" Sheet ID: " + sheetID)
	}
	return sb.String()
}

func statusMessage(err error) string {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Drop whitelist request failed with HTTP %d.", statusErr.Code)
	}

	switch {
	case errors.Is(err, domain.ErrEmptyPayload):
		return "Drop whitelist response was empty."
	}

	switch domain.ErrorKind(err) {
	case domain.KindConfiguration:
		return "Drop whitelist endpoint is not configured."
	case domain.KindTransport:
		return "Failed to reach the drop whitelist endpoint."
	case domain.KindFormat:
		return "Could not parse the drop whitelist response."
	default:
		return "Failed to refresh the drop whitelist."
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
