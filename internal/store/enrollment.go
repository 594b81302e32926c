package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/guto-escola/guto-api/internal/domain"
)

// EnrollmentStore defines the interface for enrollment data persistence.
type EnrollmentStore interface {
	// Create saves a new enrollment. The storage layer guarantees at most one
	// active enrollment per student; a second one fails with
	// domain.ErrAlreadyEnrolled even when the application check raced.
	Create(ctx context.Context, enrollment *domain.Enrollment) error

	// GetByID returns ErrEnrollmentNotFound if the enrollment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)

	// GetByIDForUpdate reads and locks the enrollment row.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)

	// GetActiveByStudent returns the student's active enrollment, or
	// ErrEnrollmentNotFound when there is none.
	GetActiveByStudent(ctx context.Context, studentCode int64) (*domain.Enrollment, error)

	// Update saves the active flag, roster position and disenrollment stamps.
	Update(ctx context.Context, enrollment *domain.Enrollment) error

	// CountActiveByClass returns the number of active enrollments in a class.
	CountActiveByClass(ctx context.Context, classID uuid.UUID) (int, error)

	// CountByStudent counts every enrollment of a student, active or not.
	CountByStudent(ctx context.Context, studentCode int64) (int, error)

	// CountByClass counts every enrollment of a class, active or not.
	CountByClass(ctx context.Context, classID uuid.UUID) (int, error)

	// IsActiveInClass reports whether the student is actively enrolled in the class.
	IsActiveInClass(ctx context.Context, studentCode int64, classID uuid.UUID) (bool, error)

	// ListActiveRoster returns the actively enrolled students of a class in
	// no particular order; callers sort with domain.SortRoster.
	ListActiveRoster(ctx context.Context, classID uuid.UUID) ([]domain.RosterEntry, error)

	// ListByStudent returns the enrollment history of a student, newest first.
	ListByStudent(ctx context.Context, studentCode int64) ([]*domain.Enrollment, error)

	WithTx(tx *sql.Tx) EnrollmentStore
}
