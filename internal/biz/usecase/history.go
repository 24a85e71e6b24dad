package usecase

import (
	"context"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// HistoryUsecase reads and prunes the matched-drop history
type HistoryUsecase struct {
	drops     repo.DropRepo
	retention time.Duration
}

// NewHistoryUsecase creates a new history usecase
func NewHistoryUsecase(drops repo.DropRepo, retention time.Duration) *HistoryUsecase {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &HistoryUsecase{
		drops:     drops,
		retention: retention,
	}
}

// Recent returns the newest drop records, at most limit (default 20, max 200)
func (uc *HistoryUsecase) Recent(ctx context.Context, limit int) ([]*domain.DropRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	return uc.drops.ListRecent(ctx, limit)
}

// Cleanup deletes records older than the retention window
func (uc *HistoryUsecase) Cleanup(ctx context.Context) (int64, error) {
	before := time.Now().Add(-uc.retention)
	return uc.drops.CleanupOld(ctx, before)
}
