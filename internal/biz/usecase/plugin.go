package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// PluginConfig contains the endpoints the plugin talks to
type PluginConfig struct {
	EndpointURL string // Whitelist GET, and webhook POST unless WebhookURL is set
	WebhookURL  string // Optional separate webhook
}

// WebhookEndpoint returns the URL drops are posted to
func (c PluginConfig) WebhookEndpoint() string {
	if url := strings.TrimSpace(c.WebhookURL); url != "" {
		return url
	}
	return strings.TrimSpace(c.EndpointURL)
}

// PluginUsecase is the handler surface the host wires its events to.
// None of its methods return errors; failures are logged and absorbed.
type PluginUsecase struct {
	cache    *WhitelistCache
	notifier *EventNotifier
	items    repo.ItemResolver // optional
	config   PluginConfig
	logger   *slog.Logger
}

// NewPluginUsecase creates a new plugin usecase
func NewPluginUsecase(
	cache *WhitelistCache,
	notifier *EventNotifier,
	items repo.ItemResolver,
	config PluginConfig,
	logger *slog.Logger,
) *PluginUsecase {
	return &PluginUsecase{
		cache:    cache,
		notifier: notifier,
		items:    items,
		config:   config,
		logger:   logger.With("component", "Plugin"),
	}
}

// OnStartUp starts a silent whitelist refresh
func (uc *PluginUsecase) OnStartUp() {
	uc.logger.Info("drops exporter started")
	uc.cache.Refresh(uc.config.EndpointURL, false)
}

// OnShutDown waits for in-flight refreshes and deliveries, up to ctx
func (uc *PluginUsecase) OnShutDown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.cache.Wait()
		uc.notifier.Wait()
		close(done)
	}()

	select {
	case <-done:
		uc.logger.Info("drops exporter stopped")
		return nil
	case <-ctx.Done():
		uc.logger.Warn("drops exporter stopped with work in flight")
		return ctx.Err()
	}
}

// OnGameStateChanged refreshes the whitelist with a status message on login
func (uc *PluginUsecase) OnGameStateChanged(event domain.GameStateChanged) {
	if event.State != domain.GameStateLoggedIn {
		return
	}
	uc.cache.Refresh(uc.config.EndpointURL, true)
}

// OnItemSpawned resolves the item name and hands the drop to the notifier
func (uc *PluginUsecase) OnItemSpawned(event domain.ItemSpawned) bool {
	name := strings.TrimSpace(event.ItemName)
	if name == "" && uc.items != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		resolved, err := uc.items.ItemName(ctx, event.ItemID)
		cancel()
		if err != nil {
			uc.logger.Debug("unresolved item", "item_id", event.ItemID, "error", err)
			return false
		}
		name = resolved
	}
	if name == "" {
		return false
	}

	quantity := event.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return uc.notifier.Handle(domain.DropEvent{ItemName: name, Quantity: quantity}, uc.cache, uc.config.WebhookEndpoint())
}

// Snapshot returns the current whitelist snapshot
func (uc *PluginUsecase) Snapshot() *domain.WhitelistSnapshot {
	return uc.cache.CurrentSnapshot()
}

// RefreshInBackground starts a silent refresh, used by periodic reloads
func (uc *PluginUsecase) RefreshInBackground() {
	uc.cache.Refresh(uc.config.EndpointURL, false)
}

// RefreshNow reloads the whitelist synchronously without announcing
func (uc *PluginUsecase) RefreshNow(ctx context.Context) (*domain.WhitelistSnapshot, error) {
	return uc.cache.RefreshNow(ctx, uc.config.EndpointURL, false)
}

// EndpointURL returns the configured whitelist endpoint
func (uc *PluginUsecase) EndpointURL() string {
	return uc.config.EndpointURL
}
