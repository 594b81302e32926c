package store

import (
	"context"
	"database/sql"

	"github.com/guto-escola/guto-api/internal/domain"
)

// StaffFilter narrows a staff listing. Zero values mean "no filter".
type StaffFilter struct {
	Role   domain.StaffRole
	Status domain.EmploymentStatus
	Limit  int
	Offset int
}

// StaffStore defines the interface for staff data persistence.
type StaffStore interface {
	// Create saves a new staff member and fills in the assigned code.
	Create(ctx context.Context, staff *domain.Staff) error

	// GetByCode returns ErrStaffNotFound if the staff member does not exist.
	GetByCode(ctx context.Context, code int64) (*domain.Staff, error)

	// Update returns ErrStaffNotFound if the staff member does not exist.
	Update(ctx context.Context, staff *domain.Staff) error

	// List returns staff ordered by name.
	List(ctx context.Context, filter StaffFilter) ([]*domain.Staff, error)

	WithTx(tx *sql.Tx) StaffStore
}
