package repo

import (
	"context"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

// WhitelistSource fetches the remote whitelist.
// Errors are classified with domain.ErrorKind: a nil payload with
// domain.ErrEmptyPayload means the body held nothing.
type WhitelistSource interface {
	Fetch(ctx context.Context, endpointURL string) (*domain.RemoteWhitelistPayload, error)
}

// WhitelistStore keeps the last-known-good snapshot across restarts
type WhitelistStore interface {
	// Load returns nil when nothing has been stored yet
	Load(ctx context.Context) (*domain.WhitelistSnapshot, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snap *domain.WhitelistSnapshot) error

	// Clear removes the stored snapshot
	Clear(ctx context.Context) error
}
