package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// activeEnrollmentIndex is the partial unique index allowing one active
// enrollment per student.
const activeEnrollmentIndex = "enrollments_one_active_per_student"

// PostgresEnrollmentStore implements store.EnrollmentStore on PostgreSQL.
type PostgresEnrollmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEnrollmentStore creates an enrollment store. A nil logger means slog.Default().
func NewPostgresEnrollmentStore(db store.DBTX, logger *slog.Logger) *PostgresEnrollmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEnrollmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "enrollment_store")),
	}
}

var _ store.EnrollmentStore = (*PostgresEnrollmentStore)(nil)

var enrollmentConstraints = map[string]error{
	activeEnrollmentIndex: domain.ErrAlreadyEnrolled,
}

const enrollmentColumns = `id, student_code, class_id, active, roster_position, enrolled_at,
	enrolled_by, disenrolled_at, disenroll_reason, disenrolled_by`

func scanEnrollment(row rowScanner) (*domain.Enrollment, error) {
	var (
		e             domain.Enrollment
		position      sql.NullInt32
		disenrolledAt sql.NullTime
		disenrolledBy uuid.NullUUID
	)
	err := row.Scan(&e.ID, &e.StudentCode, &e.ClassID, &e.Active, &position, &e.EnrolledAt,
		&e.EnrolledBy, &disenrolledAt, &e.DisenrollReason, &disenrolledBy)
	if err != nil {
		return nil, err
	}
	if position.Valid {
		p := int(position.Int32)
		e.RosterPosition = &p
	}
	if disenrolledAt.Valid {
		t := disenrolledAt.Time
		e.DisenrolledAt = &t
	}
	if disenrolledBy.Valid {
		id := disenrolledBy.UUID
		e.DisenrolledBy = &id
	}
	return &e, nil
}

// Create implements store.EnrollmentStore.Create.
func (s *PostgresEnrollmentStore) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := enrollment.Validate(); err != nil {
		log.Warn("enrollment validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO enrollments (id, student_code, class_id, active, roster_position,
			enrolled_at, enrolled_by, disenrolled_at, disenroll_reason, disenrolled_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		enrollment.ID, enrollment.StudentCode, enrollment.ClassID, enrollment.Active,
		enrollment.RosterPosition, enrollment.EnrolledAt, enrollment.EnrolledBy,
		enrollment.DisenrolledAt, enrollment.DisenrollReason, enrollment.DisenrolledBy,
	)
	if err != nil {
		if ConstraintName(err) == activeEnrollmentIndex {
			log.Warn("active enrollment already exists",
				slog.Int64("student_code", enrollment.StudentCode),
				slog.String("class_id", enrollment.ClassID.String()))
		} else {
			log.Error("failed to create enrollment",
				slog.String("error", err.Error()),
				slog.Int64("student_code", enrollment.StudentCode),
				slog.String("class_id", enrollment.ClassID.String()))
		}
		return MapConstraint(err, enrollmentConstraints)
	}

	log.Info("enrollment created",
		slog.String("enrollment_id", enrollment.ID.String()),
		slog.Int64("student_code", enrollment.StudentCode),
		slog.String("class_id", enrollment.ClassID.String()))
	return nil
}

func (s *PostgresEnrollmentStore) getOne(ctx context.Context, query string, args ...any) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	e, err := scanEnrollment(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEnrollmentNotFound
		}
		log.Error("failed to get enrollment", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return e, nil
}

// GetByID implements store.EnrollmentStore.GetByID.
func (s *PostgresEnrollmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	return s.getOne(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.EnrollmentStore.GetByIDForUpdate.
func (s *PostgresEnrollmentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	return s.getOne(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1 FOR UPDATE`, id)
}

// GetActiveByStudent implements store.EnrollmentStore.GetActiveByStudent.
func (s *PostgresEnrollmentStore) GetActiveByStudent(ctx context.Context, studentCode int64) (*domain.Enrollment, error) {
	return s.getOne(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_code = $1 AND active`,
		studentCode)
}

// Update implements store.EnrollmentStore.Update.
func (s *PostgresEnrollmentStore) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := enrollment.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE enrollments
		SET active = $1, roster_position = $2, disenrolled_at = $3, disenroll_reason = $4,
			disenrolled_by = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		enrollment.Active, enrollment.RosterPosition, enrollment.DisenrolledAt,
		enrollment.DisenrollReason, enrollment.DisenrolledBy, enrollment.ID,
	)
	if err != nil {
		log.Error("failed to update enrollment",
			slog.String("error", err.Error()),
			slog.String("enrollment_id", enrollment.ID.String()))
		return MapConstraint(err, enrollmentConstraints)
	}
	if err := CheckRowsAffected(result, store.ErrEnrollmentNotFound); err != nil {
		return err
	}

	log.Debug("enrollment updated",
		slog.String("enrollment_id", enrollment.ID.String()),
		slog.Bool("active", enrollment.Active))
	return nil
}

func (s *PostgresEnrollmentStore) count(ctx context.Context, query string, arg any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count enrollments",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return n, nil
}

// CountActiveByClass implements store.EnrollmentStore.CountActiveByClass.
func (s *PostgresEnrollmentStore) CountActiveByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND active`, classID)
}

// CountByStudent implements store.EnrollmentStore.CountByStudent.
func (s *PostgresEnrollmentStore) CountByStudent(ctx context.Context, studentCode int64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM enrollments WHERE student_code = $1`, studentCode)
}

// CountByClass implements store.EnrollmentStore.CountByClass.
func (s *PostgresEnrollmentStore) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM enrollments WHERE class_id = $1`, classID)
}

// IsActiveInClass implements store.EnrollmentStore.IsActiveInClass.
func (s *PostgresEnrollmentStore) IsActiveInClass(ctx context.Context, studentCode int64, classID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_code = $1 AND class_id = $2 AND active)`,
		studentCode, classID,
	).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check enrollment",
			slog.String("error", err.Error()),
			slog.Int64("student_code", studentCode))
		return false, MapError(err)
	}
	return exists, nil
}

// ListActiveRoster implements store.EnrollmentStore.ListActiveRoster.
func (s *PostgresEnrollmentStore) ListActiveRoster(ctx context.Context, classID uuid.UUID) ([]domain.RosterEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT e.id, e.roster_position, e.enrolled_at,
			s.code, s.name, s.social_name, s.birth_date, s.sex, s.mother_name, s.father_name,
			s.twin, s.missing_school_history, s.exclusive_aee, s.archive_status, s.created_at, s.updated_at
		FROM enrollments e
		JOIN students s ON s.code = e.student_code
		WHERE e.class_id = $1 AND e.active
	`
	rows, err := s.db.QueryContext(ctx, query, classID)
	if err != nil {
		log.Error("failed to list roster", slog.String("error", err.Error()), slog.String("class_id", classID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var roster []domain.RosterEntry
	for rows.Next() {
		var (
			entry       domain.RosterEntry
			position    sql.NullInt32
			sex, status string
		)
		st := &entry.Student
		if err := rows.Scan(&entry.EnrollmentID, &position, &entry.EnrolledAt,
			&st.Code, &st.Name, &st.SocialName, &st.BirthDate, &sex, &st.MotherName, &st.FatherName,
			&st.Twin, &st.MissingSchoolHistory, &st.ExclusiveAEE, &status, &st.CreatedAt, &st.UpdatedAt,
		); err != nil {
			return nil, err
		}
		st.Sex = domain.Sex(sex)
		st.ArchiveStatus = domain.ArchiveStatus(status)
		if position.Valid {
			p := int(position.Int32)
			entry.Position = &p
		}
		roster = append(roster, entry)
	}
	return roster, rows.Err()
}

// ListByStudent implements store.EnrollmentStore.ListByStudent.
func (s *PostgresEnrollmentStore) ListByStudent(ctx context.Context, studentCode int64) ([]*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_code = $1 ORDER BY enrolled_at DESC`,
		studentCode)
	if err != nil {
		log.Error("failed to list enrollments", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// WithTx implements store.EnrollmentStore.WithTx.
func (s *PostgresEnrollmentStore) WithTx(tx *sql.Tx) store.EnrollmentStore {
	return &PostgresEnrollmentStore{db: tx, logger: s.logger}
}
