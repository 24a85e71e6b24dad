package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// snapshotStore keeps the last-known-good whitelist in SQLite
type snapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a new whitelist snapshot store
func NewSnapshotStore(db *sql.DB) repo.WhitelistStore {
	return &snapshotStore{db: db}
}

// Load returns the stored snapshot, or nil if there is none
func (s *snapshotStore) Load(ctx context.Context) (*domain.WhitelistSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT items, updated_at, loaded_at FROM whitelist_snapshot WHERE id = 1
	`)

	var itemsJSON, updatedAt string
	var loadedAt int64
	err := row.Scan(&itemsJSON, &updatedAt, &loadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	var items []string
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to decode stored items: %w", err)
	}

	return domain.NewWhitelistSnapshot(items, updatedAt, time.UnixMilli(loadedAt)), nil
}

// Save replaces the stored snapshot
func (s *snapshotStore) Save(ctx context.Context, snap *domain.WhitelistSnapshot) error {
	itemsJSON, err := json.Marshal(snap.Items())
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO whitelist_snapshot (id, items, updated_at, loaded_at)
		VALUES (1, ?, ?, ?)
	`, string(itemsJSON), snap.UpdatedAt(), snap.LoadedAt().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Clear removes the stored snapshot
func (s *snapshotStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM whitelist_snapshot`)
	if err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
