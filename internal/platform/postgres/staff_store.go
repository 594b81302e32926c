package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresStaffStore implements store.StaffStore on PostgreSQL.
type PostgresStaffStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStaffStore creates a staff store. A nil logger means slog.Default().
func NewPostgresStaffStore(db store.DBTX, logger *slog.Logger) *PostgresStaffStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStaffStore{
		db:     db,
		logger: logger.With(slog.String("component", "staff_store")),
	}
}

var _ store.StaffStore = (*PostgresStaffStore)(nil)

const staffColumns = `code, name, birth_date, sex, role, status, bond, admission_date,
	weekly_hours, archive_status, created_at, updated_at`

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var (
		m                                 domain.Staff
		sex, role, status, bond, archived string
		admission                         sql.NullTime
	)
	err := row.Scan(&m.Code, &m.Name, &m.BirthDate, &sex, &role, &status, &bond, &admission,
		&m.WeeklyHours, &archived, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Sex = domain.Sex(sex)
	m.Role = domain.StaffRole(role)
	m.Status = domain.EmploymentStatus(status)
	m.Bond = domain.EmploymentBond(bond)
	m.ArchiveStatus = domain.ArchiveStatus(archived)
	if admission.Valid {
		t := admission.Time
		m.AdmissionDate = &t
	}
	return &m, nil
}

// Create implements store.StaffStore.Create.
func (s *PostgresStaffStore) Create(ctx context.Context, staff *domain.Staff) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := staff.Validate(); err != nil {
		log.Warn("staff validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO staff (name, birth_date, sex, role, status, bond, admission_date,
			weekly_hours, archive_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING code
	`
	err := s.db.QueryRowContext(ctx, query,
		staff.Name, staff.BirthDate, staff.Sex, staff.Role, staff.Status, staff.Bond,
		staff.AdmissionDate, staff.WeeklyHours, staff.ArchiveStatus, staff.CreatedAt, staff.UpdatedAt,
	).Scan(&staff.Code)
	if err != nil {
		log.Error("failed to create staff", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("staff created", slog.Int64("staff_code", staff.Code), slog.String("role", string(staff.Role)))
	return nil
}

// GetByCode implements store.StaffStore.GetByCode.
func (s *PostgresStaffStore) GetByCode(ctx context.Context, code int64) (*domain.Staff, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	staff, err := scanStaff(s.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStaffNotFound
		}
		log.Error("failed to get staff", slog.String("error", err.Error()), slog.Int64("staff_code", code))
		return nil, MapError(err)
	}
	return staff, nil
}

// Update implements store.StaffStore.Update.
func (s *PostgresStaffStore) Update(ctx context.Context, staff *domain.Staff) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := staff.Validate(); err != nil {
		return err
	}

	staff.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE staff
		SET name = $1, birth_date = $2, sex = $3, role = $4, status = $5, bond = $6,
			admission_date = $7, weekly_hours = $8, archive_status = $9, updated_at = $10
		WHERE code = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		staff.Name, staff.BirthDate, staff.Sex, staff.Role, staff.Status, staff.Bond,
		staff.AdmissionDate, staff.WeeklyHours, staff.ArchiveStatus, staff.UpdatedAt, staff.Code,
	)
	if err != nil {
		log.Error("failed to update staff", slog.String("error", err.Error()), slog.Int64("staff_code", staff.Code))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrStaffNotFound)
}

// List implements store.StaffStore.List.
func (s *PostgresStaffStore) List(ctx context.Context, filter store.StaffFilter) ([]*domain.Staff, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + staffColumns + ` FROM staff`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, code" + limitOffset(&args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list staff", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.Staff
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// WithTx implements store.StaffStore.WithTx.
func (s *PostgresStaffStore) WithTx(tx *sql.Tx) store.StaffStore {
	return &PostgresStaffStore{db: tx, logger: s.logger}
}
