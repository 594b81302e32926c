package store

import (
	"context"
	"database/sql"

	"github.com/guto-escola/guto-api/internal/domain"
)

// ActivityStore defines the interface for the append-only activity log.
type ActivityStore interface {
	// Append writes an entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *domain.ActivityEntry) error

	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error)

	WithTx(tx *sql.Tx) ActivityStore
}
