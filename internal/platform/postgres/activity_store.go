package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// DefaultActivityLimit bounds ListRecent when no positive limit is given.
const DefaultActivityLimit = 20

// PostgresActivityStore implements store.ActivityStore on PostgreSQL.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates an activity store. A nil logger means slog.Default().
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Append implements store.ActivityStore.Append.
func (s *PostgresActivityStore) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, user_id, username, action, module, object_name, object_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.UserID, entry.Username, entry.Action, entry.Module,
		entry.ObjectName, entry.ObjectID, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append activity",
			slog.String("error", err.Error()),
			slog.String("action", string(entry.Action)),
			slog.String("module", string(entry.Module)))
		return MapError(err)
	}
	return nil
}

// ListRecent implements store.ActivityStore.ListRecent.
func (s *PostgresActivityStore) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, action, module, object_name, object_id, description, created_at
		FROM activity_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.ActivityEntry
	for rows.Next() {
		var (
			e              domain.ActivityEntry
			action, module string
		)
		err := rows.Scan(&e.ID, &e.UserID, &e.Username, &action, &module,
			&e.ObjectName, &e.ObjectID, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.Action = domain.ActionKind(action)
		e.Module = domain.Module(module)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// WithTx implements store.ActivityStore.WithTx.
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{db: tx, logger: s.logger}
}
