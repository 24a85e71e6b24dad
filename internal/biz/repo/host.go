package repo

import (
	"context"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

// NotificationSink shows a user-visible line of text.
// Implementations must not block on network I/O.
type NotificationSink interface {
	Notify(channel domain.ChatChannel, sender, message string)
}

// ItemResolver maps a host item identifier to its display name
type ItemResolver interface {
	ItemName(ctx context.Context, itemID int) (string, error)
}
