package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresGradebookStore implements store.GradebookStore on PostgreSQL.
type PostgresGradebookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGradebookStore creates a gradebook store. A nil logger means slog.Default().
func NewPostgresGradebookStore(db store.DBTX, logger *slog.Logger) *PostgresGradebookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGradebookStore{
		db:     db,
		logger: logger.With(slog.String("component", "gradebook_store")),
	}
}

var _ store.GradebookStore = (*PostgresGradebookStore)(nil)

const gradebookColumns = `id, class_id, subject_id, period, status, closed_at, closed_by,
	reopened_at, reopened_by, created_at, updated_at`

func scanGradebook(row rowScanner) (*domain.Gradebook, error) {
	var (
		g          domain.Gradebook
		status     string
		closedAt   sql.NullTime
		closedBy   uuid.NullUUID
		reopenedAt sql.NullTime
		reopenedBy uuid.NullUUID
	)
	err := row.Scan(&g.ID, &g.ClassID, &g.SubjectID, &g.Period, &status, &closedAt, &closedBy,
		&reopenedAt, &reopenedBy, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.Status = domain.GradebookStatus(status)
	if closedAt.Valid {
		t := closedAt.Time
		g.ClosedAt = &t
	}
	if closedBy.Valid {
		id := closedBy.UUID
		g.ClosedBy = &id
	}
	if reopenedAt.Valid {
		t := reopenedAt.Time
		g.ReopenedAt = &t
	}
	if reopenedBy.Valid {
		id := reopenedBy.UUID
		g.ReopenedBy = &id
	}
	return &g, nil
}

func (s *PostgresGradebookStore) getOne(ctx context.Context, query string, args ...any) (*domain.Gradebook, error) {
	g, err := scanGradebook(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGradebookNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get gradebook", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return g, nil
}

// GetOrCreate implements store.GradebookStore.GetOrCreate.
func (s *PostgresGradebookStore) GetOrCreate(ctx context.Context, gradebook *domain.Gradebook) (*domain.Gradebook, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO gradebooks (id, class_id, subject_id, period, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (class_id, subject_id, period) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		gradebook.ID, gradebook.ClassID, gradebook.SubjectID, gradebook.Period,
		gradebook.Status, gradebook.CreatedAt, gradebook.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create gradebook",
			slog.String("error", err.Error()),
			slog.String("class_id", gradebook.ClassID.String()),
			slog.String("subject_id", gradebook.SubjectID.String()))
		return nil, MapError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 1 {
		log.Info("gradebook opened",
			slog.String("gradebook_id", gradebook.ID.String()),
			slog.String("period", gradebook.Period))
	}

	return s.getOne(ctx,
		`SELECT `+gradebookColumns+` FROM gradebooks WHERE class_id = $1 AND subject_id = $2 AND period = $3`,
		gradebook.ClassID, gradebook.SubjectID, gradebook.Period)
}

// GetByID implements store.GradebookStore.GetByID.
func (s *PostgresGradebookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error) {
	return s.getOne(ctx, `SELECT `+gradebookColumns+` FROM gradebooks WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.GradebookStore.GetByIDForUpdate.
func (s *PostgresGradebookStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error) {
	return s.getOne(ctx, `SELECT `+gradebookColumns+` FROM gradebooks WHERE id = $1 FOR UPDATE`, id)
}

// GetByScopeForShare implements store.GradebookStore.GetByScopeForShare.
func (s *PostgresGradebookStore) GetByScopeForShare(
	ctx context.Context,
	classID, subjectID uuid.UUID,
	period string,
) (*domain.Gradebook, error) {
	return s.getOne(ctx,
		`SELECT `+gradebookColumns+` FROM gradebooks
		WHERE class_id = $1 AND subject_id = $2 AND period = $3 FOR SHARE`,
		classID, subjectID, period)
}

// Update implements store.GradebookStore.Update.
func (s *PostgresGradebookStore) Update(ctx context.Context, gradebook *domain.Gradebook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE gradebooks
		SET   status = $1, closed_at = $2, closed_by = $3, reopened_at = $4, reopened_by = $5, updated_at = $6
		WHERE id     = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		gradebook.Status, gradebook.ClosedAt, gradebook.ClosedBy,
		gradebook.ReopenedAt, gradebook.ReopenedBy, gradebook.UpdatedAt, gradebook.ID,
	)
	if err != nil {
		log.Error("failed to update gradebook",
			slog.String("error", err.Error()),
			slog.String("gradebook_id", gradebook.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrGradebookNotFound); err != nil {
		return err
	}

	log.Info("gradebook updated",
		slog.String("gradebook_id", gradebook.ID.String()),
		slog.String("status", string(gradebook.Status)))
	return nil
}

// ListPending implements store.GradebookStore.ListPending.
func (s *PostgresGradebookStore) ListPending(ctx context.Context, gradebook *domain.Gradebook) ([]domain.PendingItem, error) {
	query := `
		SELECT st.code, st.name, d.id::text, d.name, e.id::text, e.name,
			CASE WHEN sub.grading_mode = 'CONCEPT' THEN $4 ELSE $5 END
		FROM enrollments en
		JOIN students st ON st.code = en.student_code
		JOIN evaluations e ON e.class_id = en.class_id AND e.subject_id = $2
		JOIN period_divisions d ON d.id = e.division_id AND d.active AND d.period = $3
		JOIN subjects sub ON sub.id = e.subject_id
		LEFT JOIN grades g ON g.evaluation_id = e.id AND g.student_code = en.student_code
		WHERE en.class_id = $1 AND en.active AND g.id IS NULL
		ORDER BY d.sort_order, e.applied_on, e.name, st.name
	`
	rows, err := s.db.QueryContext(ctx, query,
		gradebook.ClassID, gradebook.SubjectID, gradebook.Period,
		string(domain.PendingConceptMissing), string(domain.PendingGradeMissing),
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list pending grades",
			slog.String("error", err.Error()),
			slog.String("gradebook_id", gradebook.ID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []domain.PendingItem
	for rows.Next() {
		var (
			item domain.PendingItem
			kind string
		)
		err := rows.Scan(&item.StudentCode, &item.StudentName, &item.DivisionID, &item.DivisionName,
			&item.EvaluationID, &item.EvaluationName, &kind)
		if err != nil {
			return nil, err
		}
		item.Kind = domain.PendingKind(kind)
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByClass implements store.GradebookStore.ListByClass.
func (s *PostgresGradebookStore) ListByClass(ctx context.Context, classID uuid.UUID) ([]*domain.Gradebook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gradebookColumns+` FROM gradebooks WHERE class_id = $1 ORDER BY period DESC, created_at`, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var gradebooks []*domain.Gradebook
	for rows.Next() {
		g, err := scanGradebook(rows)
		if err != nil {
			return nil, err
		}
		gradebooks = append(gradebooks, g)
	}
	return gradebooks, rows.Err()
}

// WithTx implements store.GradebookStore.WithTx.
func (s *PostgresGradebookStore) WithTx(tx *sql.Tx) store.GradebookStore {
	return &PostgresGradebookStore{db: tx, logger: s.logger}
}
