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

// PostgresGradeStore implements store.GradeStore on PostgreSQL.
type PostgresGradeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGradeStore creates a grade store. A nil logger means slog.Default().
func NewPostgresGradeStore(db store.DBTX, logger *slog.Logger) *PostgresGradeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGradeStore{
		db:     db,
		logger: logger.With(slog.String("component", "grade_store")),
	}
}

var _ store.GradeStore = (*PostgresGradeStore)(nil)

const gradeColumns = `id, evaluation_id, student_code, score, concept_id, absent, exempted,
	notes, recorded_by, recorded_at, updated_at`

func scanGrade(row rowScanner) (*domain.Grade, error) {
	var (
		g       domain.Grade
		score   sql.NullFloat64
		concept uuid.NullUUID
	)
	err := row.Scan(&g.ID, &g.EvaluationID, &g.StudentCode, &score, &concept, &g.Absent, &g.Exempted,
		&g.Notes, &g.RecordedBy, &g.RecordedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if score.Valid {
		v := score.Float64
		g.Score = &v
	}
	if concept.Valid {
		id := concept.UUID
		g.ConceptID = &id
	}
	return &g, nil
}

// Upsert implements store.GradeStore.Upsert.
// A re-recorded grade keeps its original id and recorded_at.
func (s *PostgresGradeStore) Upsert(ctx context.Context, grade *domain.Grade) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := grade.Validate(); err != nil {
		log.Warn("grade validation failed during upsert", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO grades (id, evaluation_id, student_code, score, concept_id, absent, exempted,
			notes, recorded_by, recorded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (evaluation_id, student_code) DO UPDATE SET
			score = EXCLUDED.score,
			concept_id = EXCLUDED.concept_id,
			absent = EXCLUDED.absent,
			exempted = EXCLUDED.exempted,
			notes = EXCLUDED.notes,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = EXCLUDED.updated_at
		RETURNING id, recorded_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		grade.ID, grade.EvaluationID, grade.StudentCode, grade.Score, grade.ConceptID,
		grade.Absent, grade.Exempted, grade.Notes, grade.RecordedBy, grade.RecordedAt, grade.UpdatedAt,
	).Scan(&grade.ID, &grade.RecordedAt, &grade.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert grade",
			slog.String("error", err.Error()),
			slog.String("evaluation_id", grade.EvaluationID.String()),
			slog.Int64("student_code", grade.StudentCode))
		return MapError(err)
	}

	log.Debug("grade recorded",
		slog.String("grade_id", grade.ID.String()),
		slog.Int64("student_code", grade.StudentCode))
	return nil
}

// GetByEvaluationAndStudent implements store.GradeStore.GetByEvaluationAndStudent.
func (s *PostgresGradeStore) GetByEvaluationAndStudent(
	ctx context.Context,
	evaluationID uuid.UUID,
	studentCode int64,
) (*domain.Grade, error) {
	g, err := scanGrade(s.db.QueryRowContext(ctx,
		`SELECT `+gradeColumns+` FROM grades WHERE evaluation_id = $1 AND student_code = $2`,
		evaluationID, studentCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGradeNotFound
		}
		return nil, MapError(err)
	}
	return g, nil
}

// ListByEvaluation implements store.GradeStore.ListByEvaluation.
func (s *PostgresGradeStore) ListByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]*domain.Grade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gradeColumns+` FROM grades WHERE evaluation_id = $1 ORDER BY student_code`, evaluationID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list grades",
			slog.String("error", err.Error()),
			slog.String("evaluation_id", evaluationID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var grades []*domain.Grade
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

// ListScores implements store.GradeStore.ListScores.
func (s *PostgresGradeStore) ListScores(
	ctx context.Context,
	studentCode int64,
	scope store.EvaluationScope,
) ([]domain.WeightedScore, error) {
	args := []any{studentCode}
	query := `
		SELECT g.score, e.max_value, e.weight
		FROM grades g
		JOIN evaluations e ON e.id = g.evaluation_id
		WHERE g.student_code = $1 AND g.score IS NOT NULL AND` + scopeFilter(&args, scope) + `
		ORDER BY e.applied_on`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list scores",
			slog.String("error", err.Error()),
			slog.Int64("student_code", studentCode))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var scores []domain.WeightedScore
	for rows.Next() {
		var ws domain.WeightedScore
		if err := rows.Scan(&ws.Score, &ws.MaxValue, &ws.Weight); err != nil {
			return nil, err
		}
		scores = append(scores, ws)
	}
	return scores, rows.Err()
}

const recoveryColumns = `id, class_id, subject_id, student_code, current_average, score, did_not_opt,
	recorded_by, recorded_at, updated_at`

// UpsertRecovery implements store.GradeStore.UpsertRecovery.
// A re-recorded recovery keeps its original id, recorded_at and current_average.
func (s *PostgresGradeStore) UpsertRecovery(ctx context.Context, r *domain.Recovery) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := r.Validate(); err != nil {
		log.Warn("recovery validation failed during upsert", slog.String("error", err.Error()))
		return err
	}

	var current sql.NullFloat64
	query := `
		INSERT INTO special_recoveries (` + recoveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (class_id, subject_id, student_code) DO UPDATE SET
			score = EXCLUDED.score,
			did_not_opt = EXCLUDED.did_not_opt,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = EXCLUDED.updated_at
		RETURNING id, current_average, recorded_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.ClassID, r.SubjectID, r.StudentCode, r.CurrentAverage, r.Score, r.DidNotOpt,
		r.RecordedBy, r.RecordedAt, r.UpdatedAt,
	).Scan(&r.ID, &current, &r.RecordedAt, &r.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert special recovery",
			slog.String("error", err.Error()),
			slog.String("class_id", r.ClassID.String()),
			slog.Int64("student_code", r.StudentCode))
		return MapError(err)
	}
	r.CurrentAverage = nil
	if current.Valid {
		v := current.Float64
		r.CurrentAverage = &v
	}

	log.Debug("special recovery recorded",
		slog.String("recovery_id", r.ID.String()),
		slog.Int64("student_code", r.StudentCode))
	return nil
}

// GetRecovery implements store.GradeStore.GetRecovery.
func (s *PostgresGradeStore) GetRecovery(
	ctx context.Context,
	classID, subjectID uuid.UUID,
	studentCode int64,
) (*domain.Recovery, error) {
	var (
		r              domain.Recovery
		current, score sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT `+recoveryColumns+`
		FROM special_recoveries
		WHERE class_id = $1 AND subject_id = $2 AND student_code = $3`,
		classID, subjectID, studentCode,
	).Scan(&r.ID, &r.ClassID, &r.SubjectID, &r.StudentCode, &current, &score, &r.DidNotOpt,
		&r.RecordedBy, &r.RecordedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRecoveryNotFound
		}
		return nil, MapError(err)
	}
	if current.Valid {
		v := current.Float64
		r.CurrentAverage = &v
	}
	if score.Valid {
		v := score.Float64
		r.Score = &v
	}
	return &r, nil
}

// WithTx implements store.GradeStore.WithTx.
func (s *PostgresGradeStore) WithTx(tx *sql.Tx) store.GradeStore {
	return &PostgresGradeStore{db: tx, logger: s.logger}
}
