package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/guto-escola/guto-api/internal/domain"
)

// EvaluationScope selects evaluations of one class and subject, optionally
// restricted to a period division.
type EvaluationScope struct {
	ClassID    uuid.UUID
	SubjectID  uuid.UUID
	DivisionID *uuid.UUID
}

// EvaluationStore defines the interface for evaluation persistence.
type EvaluationStore interface {
	// Create saves a new evaluation. Foreign keys must reference existing
	// rows; otherwise store.ErrInvalidEntity is returned.
	Create(ctx context.Context, evaluation *domain.Evaluation) error

	// GetByID returns ErrEvaluationNotFound if the evaluation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error)

	// ListByScope returns evaluations by application date.
	ListByScope(ctx context.Context, scope EvaluationScope) ([]*domain.Evaluation, error)

	// CountByClass counts the evaluations of a class.
	CountByClass(ctx context.Context, classID uuid.UUID) (int, error)

	WithTx(tx *sql.Tx) EvaluationStore
}

// GradeStore defines the interface for grade persistence.
type GradeStore interface {
	// Upsert inserts the grade or, when the (evaluation, student) pair already
	// has one, replaces its outcome. The stored row's ID and timestamps are
	// written back into grade.
	Upsert(ctx context.Context, grade *domain.Grade) error

	// GetByEvaluationAndStudent returns ErrGradeNotFound when no grade exists.
	GetByEvaluationAndStudent(ctx context.Context, evaluationID uuid.UUID, studentCode int64) (*domain.Grade, error)

	// ListByEvaluation returns the grades of an evaluation by student code.
	ListByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]*domain.Grade, error)

	// ListScores returns the numeric scores a student holds in the scope,
	// together with each evaluation's maximum and weight. Grades without a
	// score (concept, absent, exempted) are left out.
	ListScores(ctx context.Context, studentCode int64, scope EvaluationScope) ([]domain.WeightedScore, error)

	// UpsertRecovery inserts the special recovery or replaces the one the
	// (class, subject, student) triple already has.
	UpsertRecovery(ctx context.Context, recovery *domain.Recovery) error

	// GetRecovery returns ErrRecoveryNotFound when the student has none.
	GetRecovery(ctx context.Context, classID, subjectID uuid.UUID, studentCode int64) (*domain.Recovery, error)

	WithTx(tx *sql.Tx) GradeStore
}
