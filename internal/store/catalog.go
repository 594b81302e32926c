package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/guto-escola/guto-api/internal/domain"
)

// SubjectStore defines the interface for subject data persistence.
type SubjectStore interface {
	// LockCodeAllocation takes a transaction-scoped lock that serialises
	// subject code allocation. It must run inside a transaction.
	LockCodeAllocation(ctx context.Context) error

	// ListCodesWithPrefix returns every allocated code starting with prefix.
	ListCodesWithPrefix(ctx context.Context, prefix string) ([]string, error)

	// Create saves a subject whose code is already allocated.
	// Returns ErrSubjectCodeTaken if the code is in use.
	Create(ctx context.Context, subject *domain.Subject) error

	// GetByID returns ErrSubjectNotFound if the subject does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error)

	// List returns subjects ordered by name.
	List(ctx context.Context, activeOnly bool) ([]*domain.Subject, error)

	WithTx(tx *sql.Tx) SubjectStore
}

// PeriodDivisionStore defines the interface for period division persistence.
type PeriodDivisionStore interface {
	// Create returns ErrDivisionOrderTaken if the order is used in the period.
	Create(ctx context.Context, division *domain.PeriodDivision) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.PeriodDivision, error)

	// ListByPeriod returns the divisions of a period by order.
	ListByPeriod(ctx context.Context, period string, activeOnly bool) ([]*domain.PeriodDivision, error)

	WithTx(tx *sql.Tx) PeriodDivisionStore
}

// ConceptStore defines the interface for concept persistence.
type ConceptStore interface {
	// Create returns ErrConceptNameTaken if the name is used.
	Create(ctx context.Context, concept *domain.Concept) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Concept, error)

	// List returns concepts ordered by numeric value, highest first.
	List(ctx context.Context, activeOnly bool) ([]*domain.Concept, error)

	WithTx(tx *sql.Tx) ConceptStore
}

// EvaluationTypeStore defines the interface for evaluation type persistence.
type EvaluationTypeStore interface {
	Create(ctx context.Context, evaluationType *domain.EvaluationType) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationType, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.EvaluationType, error)
	WithTx(tx *sql.Tx) EvaluationTypeStore
}
