package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// dropRepo implements the drop history repository
type dropRepo struct {
	db *sql.DB
}

// NewDropRepo creates a new drop history repository
func NewDropRepo(db *sql.DB) repo.DropRepo {
	return &dropRepo{db: db}
}

// Record inserts a drop record
func (r *dropRepo) Record(ctx context.Context, rec *domain.DropRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drops (id, item, quantity, matched_at, status, status_code, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ItemName, rec.Quantity, rec.MatchedAt.UnixMilli(), string(rec.Status), rec.StatusCode, rec.Error)
	if err != nil {
		return fmt.Errorf("failed to record drop: %w", err)
	}
	return nil
}

// UpdateDelivery stores the webhook outcome
func (r *dropRepo) UpdateDelivery(ctx context.Context, id string, status domain.DeliveryStatus, statusCode int, errMsg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drops SET status = ?, status_code = ?, error = ? WHERE id = ?
	`, string(status), statusCode, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update drop delivery: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("drop %s not found", id)
	}
	return nil
}

// ListRecent returns the newest records first
func (r *dropRepo) ListRecent(ctx context.Context, limit int) ([]*domain.DropRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item, quantity, matched_at, status, status_code, error
		FROM drops
		ORDER BY matched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drops: %w", err)
	}
	defer rows.Close()

	var records []*domain.DropRecord
	for rows.Next() {
		var rec domain.DropRecord
		var matchedAt int64
		var status string
		if err := rows.Scan(&rec.ID, &rec.ItemName, &rec.Quantity, &matchedAt, &status, &rec.StatusCode, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan drop: %w", err)
		}
		rec.MatchedAt = time.UnixMilli(matchedAt)
		rec.Status = domain.DeliveryStatus(status)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drops: %w", err)
	}

	return records, nil
}

// CleanupOld deletes records matched before the given time
func (r *dropRepo) CleanupOld(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drops WHERE matched_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup drops: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (r *dropRepo) Close() error {
	return r.db.Close()
}
