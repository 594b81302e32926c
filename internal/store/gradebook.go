package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/guto-escola/guto-api/internal/domain"
)

// GradebookStore defines the interface for gradebook persistence.
type GradebookStore interface {
	// GetOrCreate returns the gradebook of (class, subject, period), creating
	// gradebook as its OPEN initial state when none exists. Concurrent callers
	// converge on the same row.
	GetOrCreate(ctx context.Context, gradebook *domain.Gradebook) (*domain.Gradebook, error)

	// GetByID returns ErrGradebookNotFound if the gradebook does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error)

	// GetByIDForUpdate reads and exclusively locks the gradebook row.
	// Close and reopen hold this lock while they check and transition.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error)

	// GetByScopeForShare reads the gradebook of (class, subject, period) under
	// a shared lock, so grade and attendance writes cannot interleave with a
	// close. Returns ErrGradebookNotFound when the scope has no gradebook yet.
	GetByScopeForShare(ctx context.Context, classID, subjectID uuid.UUID, period string) (*domain.Gradebook, error)

	// Update saves the status and the closing/reopening stamps.
	Update(ctx context.Context, gradebook *domain.Gradebook) error

	// ListPending returns one item per (active student, evaluation) pair of
	// the gradebook's scope with no grade recorded, limited to active period
	// divisions of the gradebook's period. The list is complete.
	ListPending(ctx context.Context, gradebook *domain.Gradebook) ([]domain.PendingItem, error)

	// ListByClass returns the gradebooks of a class.
	ListByClass(ctx context.Context, classID uuid.UUID) ([]*domain.Gradebook, error)

	WithTx(tx *sql.Tx) GradebookStore
}
