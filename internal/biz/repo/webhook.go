package repo

import (
	"context"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

// WebhookRepo posts drop notifications.
// A non-2xx response is reported as *domain.StatusError.
type WebhookRepo interface {
	Post(ctx context.Context, endpointURL string, payload domain.NotificationPayload) error
}
