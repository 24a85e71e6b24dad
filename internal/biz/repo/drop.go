package repo

import (
	"context"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

// DropRepo is the matched-drop history (SQLite)
type DropRepo interface {
	// Record inserts a new drop record
	Record(ctx context.Context, rec *domain.DropRecord) error

	// UpdateDelivery stores the webhook outcome of a record
	UpdateDelivery(ctx context.Context, id string, status domain.DeliveryStatus, statusCode int, errMsg string) error

	// ListRecent returns the newest records first
	ListRecent(ctx context.Context, limit int) ([]*domain.DropRecord, error)

	// CleanupOld deletes records matched before the given time
	CleanupOld(ctx context.Context, before time.Time) (int64, error)

	Close() error
}
