package biz

import (
	"log/slog"

	"github.com/galzzz/drops-exporter/internal/biz/repo"
	"github.com/galzzz/drops-exporter/internal/biz/usecase"
)

// Repos contains the repositories the usecases are built from.
// Store, Drops and Items are optional.
type Repos struct {
	Source  repo.WhitelistSource
	Store   repo.WhitelistStore
	Webhook repo.WebhookRepo
	Drops   repo.DropRepo
	Items   repo.ItemResolver
	Sink    repo.NotificationSink
}

// Config contains usecase configuration
type Config struct {
	Cache    usecase.CacheConfig
	Notifier usecase.NotifierConfig
	Plugin   usecase.PluginConfig
}

// Usecases contains all usecases
type Usecases struct {
	Cache    *usecase.WhitelistCache
	Notifier *usecase.EventNotifier
	Plugin   *usecase.PluginUsecase
	History  *usecase.HistoryUsecase // nil without a drop repo
}

// NewUsecases wires the usecase layer
func NewUsecases(r Repos, cfg Config, logger *slog.Logger) *Usecases {
	cache := usecase.NewWhitelistCache(r.Source, r.Store, r.Sink, logger, cfg.Cache)
	notifier := usecase.NewEventNotifier(r.Webhook, r.Drops, r.Sink, logger, cfg.Notifier)

	uc := &Usecases{
		Cache:    cache,
		Notifier: notifier,
		Plugin:   usecase.NewPluginUsecase(cache, notifier, r.Items, cfg.Plugin, logger),
	}
	if r.Drops != nil {
		uc.History = usecase.NewHistoryUsecase(r.Drops, 0)
	}
	return uc
}
