package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresDashboardStore implements store.DashboardStore with sqlx struct scanning.
type PostgresDashboardStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresDashboardStore wraps db, opened with the pgx driver, for
// read-only aggregate queries.
func NewPostgresDashboardStore(db *sql.DB, logger *slog.Logger) *PostgresDashboardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDashboardStore{
		db:     sqlx.NewDb(db, "pgx"),
		logger: logger.With(slog.String("component", "dashboard_store")),
	}
}

var _ store.DashboardStore = (*PostgresDashboardStore)(nil)

// Counts implements store.DashboardStore.Counts.
func (s *PostgresDashboardStore) Counts(ctx context.Context) (store.DashboardCounts, error) {
	var counts store.DashboardCounts
	query := `
		SELECT
			(SELECT COUNT(*) FROM students) AS students,
			(SELECT COUNT(*) FROM students WHERE archive_status = $1) AS archived_students,
			(SELECT COUNT(*) FROM staff WHERE status = $2) AS active_staff,
			(SELECT COUNT(*) FROM enrollments WHERE active) AS active_enrollments
	`
	if err := s.db.GetContext(ctx, &counts, query,
		string(domain.ArchivePermanent), string(domain.EmploymentActive)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load dashboard counts",
			slog.String("error", err.Error()))
		return counts, MapError(err)
	}
	return counts, nil
}

// ClassOccupancy implements store.DashboardStore.ClassOccupancy.
func (s *PostgresDashboardStore) ClassOccupancy(ctx context.Context, period string) ([]store.ClassOccupancy, error) {
	var out []store.ClassOccupancy
	query := `
		SELECT c.id AS class_id, c.name, c.period, c.capacity, COUNT(e.id) AS active
		FROM classes c
		LEFT JOIN enrollments e ON e.class_id = c.id AND e.active
		WHERE c.period = $1
		GROUP BY c.id
		ORDER BY c.name
	`
	if err := s.db.SelectContext(ctx, &out, query, period); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load class occupancy",
			slog.String("error", err.Error()),
			slog.String("period", period))
		return nil, MapError(err)
	}
	return out, nil
}

// GradebookCounts implements store.DashboardStore.GradebookCounts.
func (s *PostgresDashboardStore) GradebookCounts(ctx context.Context, period string) (store.GradebookCounts, error) {
	var counts store.GradebookCounts
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = $2) AS open,
			COUNT(*) FILTER (WHERE status = $3) AS closed
		FROM gradebooks
		WHERE period = $1
	`
	if err := s.db.GetContext(ctx, &counts, query,
		period, string(domain.GradebookOpen), string(domain.GradebookClosed)); err != nil {
		return counts, MapError(err)
	}
	return counts, nil
}
