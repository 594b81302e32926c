package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/guto-escola/guto-api/internal/domain"
)

// ClassStore defines the interface for class data persistence.
type ClassStore interface {
	// Create saves a new class.
	// Returns ErrClassNameTaken if the name is already used in the period.
	Create(ctx context.Context, class *domain.Class) error

	// GetByID returns ErrClassNotFound if the class does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Class, error)

	// GetByIDForUpdate reads the class and locks its row until the
	// transaction ends. Enrollments into the same class serialise on it,
	// which keeps the capacity check race-free. Only meaningful inside a
	// transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Class, error)

	// Update saves changes to an existing class.
	// Returns ErrClassNotFound or ErrClassNameTaken.
	Update(ctx context.Context, class *domain.Class) error

	// Delete removes a class. Callers check for dependents first.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the classes of a period ordered by name, or every class
	// when period is empty.
	List(ctx context.Context, period string) ([]*domain.Class, error)

	WithTx(tx *sql.Tx) ClassStore
}
