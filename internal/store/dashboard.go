package store

import (
	"context"

	"github.com/google/uuid"
)

// DashboardCounts aggregates head counts shown on the dashboard.
type DashboardCounts struct {
	Students          int `db:"students" json:"students"`
	ArchivedStudents  int `db:"archived_students" json:"archived_students"`
	ActiveStaff       int `db:"active_staff" json:"active_staff"`
	ActiveEnrollments int `db:"active_enrollments" json:"active_enrollments"`
}

// ClassOccupancy is the seat usage of one class.
type ClassOccupancy struct {
	ClassID  uuid.UUID `db:"class_id" json:"class_id"`
	Name     string    `db:"name" json:"name"`
	Period   string    `db:"period" json:"period"`
	Capacity int       `db:"capacity" json:"capacity"`
	Active   int       `db:"active" json:"active"`
}

// GradebookCounts tallies gradebooks by status.
type GradebookCounts struct {
	Open   int `db:"open" json:"open"`
	Closed int `db:"closed" json:"closed"`
}

// DashboardStore serves read-only aggregate queries.
type DashboardStore interface {
	Counts(ctx context.Context) (DashboardCounts, error)
	ClassOccupancy(ctx context.Context, period string) ([]ClassOccupancy, error)
	GradebookCounts(ctx context.Context, period string) (GradebookCounts, error)
}
