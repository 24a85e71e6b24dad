package data

import (
	"database/sql"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Whitelist repo.WhitelistSource
	Snapshots repo.WhitelistStore
	Webhook   repo.WebhookRepo
	Drops     repo.DropRepo

	db *sql.DB
}

// NewRepositories creates all repositories. The whitelist source and the
// webhook share one HTTP transport.
func NewRepositories(dbPath string, httpTimeout time.Duration, signingSecret string) (*Repositories, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}

	transport := NewHTTPTransport(httpTimeout)

	return &Repositories{
		Whitelist: NewWhitelistSource(transport),
		Snapshots: NewSnapshotStore(db),
		Webhook:   NewWebhookRepo(transport, signingSecret),
		Drops:     NewDropRepo(db),
		db:        db,
	}, nil
}

// Close closes the database
func (r *Repositories) Close() error {
	return r.db.Close()
}
