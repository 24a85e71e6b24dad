package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/remeh/sizedwaitgroup"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// NotifierConfig contains webhook delivery configuration
type NotifierConfig struct {
	Timeout     time.Duration // Per-delivery deadline
	MaxInflight int           // Concurrent webhook posts
}

// DefaultNotifierConfig returns default notifier configuration
func DefaultNotifierConfig() NotifierConfig {
	return NotifierConfig{
		Timeout:     10 * time.Second,
		MaxInflight: 8,
	}
}

// EventNotifier matches drops against the whitelist and posts matches to
// the webhook. Delivery is fire-and-forget: Handle never waits on the network.
type EventNotifier struct {
	webhook repo.WebhookRepo
	drops   repo.DropRepo // optional
	sink    repo.NotificationSink
	logger  *slog.Logger
	config  NotifierConfig

	limiter sizedwaitgroup.SizedWaitGroup
	pending sync.WaitGroup
	now     func() time.Time
}

// NewEventNotifier creates a new event notifier
func NewEventNotifier(
	webhook repo.WebhookRepo,
	drops repo.DropRepo,
	sink repo.NotificationSink,
	logger *slog.Logger,
	config NotifierConfig,
) *EventNotifier {
	defaults := DefaultNotifierConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxInflight <= 0 {
		config.MaxInflight = defaults.MaxInflight
	}
	return &EventNotifier{
		webhook: webhook,
		drops:   drops,
		sink:    sink,
		logger:  logger.With("component", "EventNotifier"),
		config:  config,
		limiter: sizedwaitgroup.New(config.MaxInflight),
		now:     time.Now,
	}
}

// Handle checks event against the current snapshot and, on a match, shows
// a local notice and schedules webhook delivery. Reports whether it matched.
func (n *EventNotifier) Handle(event domain.DropEvent, cache SnapshotProvider, endpointURL string) bool {
	snap := cache.CurrentSnapshot()
	if snap.IsEmpty() {
		return false
	}
	if !snap.Contains(event.ItemName) {
		return false
	}

	if n.sink != nil {
		n.sink.Notify(domain.ChannelGameMessage, "",
			fmt.Sprintf("Filtered drop detected: %s x%d", event.ItemName, event.Quantity))
	}

	rec := &domain.DropRecord{
		ID:        uuid.NewString(),
		ItemName:  event.ItemName,
		Quantity:  event.Quantity,
		MatchedAt: n.now(),
		Status:    domain.DeliveryPending,
	}

	endpointURL = strings.TrimSpace(endpointURL)
	if endpointURL == "" {
		rec.Status = domain.DeliverySkipped
	}

	n.pending.Add(1)
	go func() {
		defer n.pending.Done()
		n.limiter.Add()
		defer n.limiter.Done()
		n.deliver(rec, endpointURL)
	}()

	return true
}

// Wait blocks until all scheduled deliveries have finished
func (n *EventNotifier) Wait() {
	n.pending.Wait()
}

// deliver records the drop and posts it. Failures are logged once, never retried.
func (n *EventNotifier) deliver(rec *domain.DropRecord, endpointURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), n.config.Timeout)
	defer cancel()

	n.record(ctx, rec)
	if rec.Status == domain.DeliverySkipped {
		return
	}

	err := n.webhook.Post(ctx, endpointURL, domain.DropEvent{ItemName: rec.ItemName, Quantity: rec.Quantity}.Payload())
	if err == nil {
		n.logger.Debug("drop delivered", "item", rec.ItemName, "quantity", rec.Quantity)
		n.updateDelivery(ctx, rec.ID, domain.DeliveryDelivered, 0, "")
		return
	}

	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		n.logger.Warn("webhook responded with error status",
			"status", statusErr.Code, "item", rec.ItemName, "quantity", rec.Quantity)
		n.updateDelivery(ctx, rec.ID, domain.DeliveryFailed, statusErr.Code, err.Error())
		return
	}

	n.logger.Warn("failed to post drop",
		"item", rec.ItemName, "quantity", rec.Quantity, "error", err)
	n.updateDelivery(ctx, rec.ID, domain.DeliveryFailed, 0, err.Error())
}

func (n *EventNotifier) record(ctx context.Context, rec *domain.DropRecord) {
	if n.drops == nil {
		return
	}
	if err := n.drops.Record(ctx, rec); err != nil {
		n.logger.Error("failed to record drop", "id", rec.ID, "error", err)
	}
}

func (n *EventNotifier) updateDelivery(ctx context.Context, id string, status domain.DeliveryStatus, code int, errMsg string) {
	if n.drops == nil {
		return
	}
	if err := n.drops.UpdateDelivery(ctx, id, status, code, errMsg); err != nil {
		n.logger.Error("failed to update drop delivery", "id", id, "error", err)
	}
}
