package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresEvaluationStore implements store.EvaluationStore on PostgreSQL.
type PostgresEvaluationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEvaluationStore creates an evaluation store. A nil logger means slog.Default().
func NewPostgresEvaluationStore(db store.DBTX, logger *slog.Logger) *PostgresEvaluationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEvaluationStore{
		db:     db,
		logger: logger.With(slog.String("component", "evaluation_store")),
	}
}

var _ store.EvaluationStore = (*PostgresEvaluationStore)(nil)

const evaluationColumns = `id, class_id, subject_id, division_id, type_id, name, applied_on,
	max_value, weight, created_by, created_at, updated_at`

func scanEvaluation(row rowScanner) (*domain.Evaluation, error) {
	var e domain.Evaluation
	err := row.Scan(&e.ID, &e.ClassID, &e.SubjectID, &e.DivisionID, &e.TypeID, &e.Name, &e.AppliedOn,
		&e.MaxValue, &e.Weight, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// scopeFilter renders the WHERE clause for an evaluation scope using the
// table alias e, appending its arguments to args.
func scopeFilter(args *[]any, scope store.EvaluationScope) string {
	*args = append(*args, scope.ClassID, scope.SubjectID)
	where := ` e.class_id = $` + strconv.Itoa(len(*args)-1) + ` AND e.subject_id = $` + strconv.Itoa(len(*args))
	if scope.DivisionID != nil {
		*args = append(*args, *scope.DivisionID)
		where += ` AND e.division_id = $` + strconv.Itoa(len(*args))
	}
	return where
}

// Create implements store.EvaluationStore.Create.
func (s *PostgresEvaluationStore) Create(ctx context.Context, evaluation *domain.Evaluation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := evaluation.Validate(); err != nil {
		log.Warn("evaluation validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO evaluations (id, class_id, subject_id, division_id, type_id, name, applied_on,
			max_value, weight, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		evaluation.ID, evaluation.ClassID, evaluation.SubjectID, evaluation.DivisionID, evaluation.TypeID,
		evaluation.Name, evaluation.AppliedOn, evaluation.MaxValue, evaluation.Weight,
		evaluation.CreatedBy, evaluation.CreatedAt, evaluation.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create evaluation",
			slog.String("error", err.Error()),
			slog.String("class_id", evaluation.ClassID.String()),
			slog.String("subject_id", evaluation.SubjectID.String()))
		return MapError(err)
	}

	log.Info("evaluation created", slog.String("evaluation_id", evaluation.ID.String()))
	return nil
}

// GetByID implements store.EvaluationStore.GetByID.
func (s *PostgresEvaluationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	e, err := scanEvaluation(s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEvaluationNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get evaluation",
			slog.String("error", err.Error()),
			slog.String("evaluation_id", id.String()))
		return nil, MapError(err)
	}
	return e, nil
}

// ListByScope implements store.EvaluationStore.ListByScope.
func (s *PostgresEvaluationStore) ListByScope(ctx context.Context, scope store.EvaluationScope) ([]*domain.Evaluation, error) {
	var args []any
	query := `SELECT ` + evaluationColumns + ` FROM evaluations e WHERE` + scopeFilter(&args, scope) +
		` ORDER BY e.applied_on, e.name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list evaluations", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var evaluations []*domain.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, e)
	}
	return evaluations, rows.Err()
}

// CountByClass implements store.EvaluationStore.CountByClass.
func (s *PostgresEvaluationStore) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations WHERE class_id = $1`, classID).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// WithTx implements store.EvaluationStore.WithTx.
func (s *PostgresEvaluationStore) WithTx(tx *sql.Tx) store.EvaluationStore {
	return &PostgresEvaluationStore{db: tx, logger: s.logger}
}
