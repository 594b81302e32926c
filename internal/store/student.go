package store

import (
	"context"
	"database/sql"

	"github.com/guto-escola/guto-api/internal/domain"
)

// StudentFilter narrows a student listing. Zero values mean "no filter".
type StudentFilter struct {
	Name          string
	ArchiveStatus domain.ArchiveStatus
	Limit         int
	Offset        int
}

// StudentStore defines the interface for student data persistence.
type StudentStore interface {
	// Create saves a new student and fills in the code assigned by the store.
	// Returns validation errors from the domain Student if data is invalid.
	Create(ctx context.Context, student *domain.Student) error

	// GetByCode retrieves a student by code.
	// Returns ErrStudentNotFound if the student does not exist.
	GetByCode(ctx context.Context, code int64) (*domain.Student, error)

	// Update saves changes to an existing student.
	// Returns ErrStudentNotFound if the student does not exist.
	Update(ctx context.Context, student *domain.Student) error

	// Delete removes a student. Callers check for enrollments first.
	// Returns ErrStudentNotFound if the student does not exist.
	Delete(ctx context.Context, code int64) error

	// List returns students ordered by name.
	List(ctx context.Context, filter StudentFilter) ([]*domain.Student, error)

	// WithTx returns a new StudentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StudentStore
}
