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

// PostgresStudentStore implements store.StudentStore on PostgreSQL.
type PostgresStudentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudentStore creates a student store over a connection or
// transaction managed by the caller. A nil logger means slog.Default().
func NewPostgresStudentStore(db store.DBTX, logger *slog.Logger) *PostgresStudentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStudentStore{
		db:     db,
		logger: logger.With(slog.String("component", "student_store")),
	}
}

var _ store.StudentStore = (*PostgresStudentStore)(nil)

const studentColumns = `code, name, social_name, birth_date, sex, mother_name, father_name,
	twin, missing_school_history, exclusive_aee, archive_status, created_at, updated_at`

func scanStudent(row rowScanner) (*domain.Student, error) {
	var s domain.Student
	var sex, status string
	err := row.Scan(
		&s.Code, &s.Name, &s.SocialName, &s.BirthDate, &sex, &s.MotherName, &s.FatherName,
		&s.Twin, &s.MissingSchoolHistory, &s.ExclusiveAEE, &status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Sex = domain.Sex(sex)
	s.ArchiveStatus = domain.ArchiveStatus(status)
	return &s, nil
}

// Create implements store.StudentStore.Create.
func (s *PostgresStudentStore) Create(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO students (name, social_name, birth_date, sex, mother_name, father_name,
			twin, missing_school_history, exclusive_aee, archive_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING code
	`
	err := s.db.QueryRowContext(ctx, query,
		student.Name, student.SocialName, student.BirthDate, student.Sex,
		student.MotherName, student.FatherName, student.Twin,
		student.MissingSchoolHistory, student.ExclusiveAEE, student.ArchiveStatus,
		student.CreatedAt, student.UpdatedAt,
	).Scan(&student.Code)
	if err != nil {
		log.Error("failed to create student", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("student created", slog.Int64("student_code", student.Code))
	return nil
}

// GetByCode implements store.StudentStore.GetByCode.
func (s *PostgresStudentStore) GetByCode(ctx context.Context, code int64) (*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + studentColumns + ` FROM students WHERE code = $1`
	student, err := scanStudent(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("student not found", slog.Int64("student_code", code))
			return nil, store.ErrStudentNotFound
		}
		log.Error("failed to get student", slog.String("error", err.Error()), slog.Int64("student_code", code))
		return nil, MapError(err)
	}
	return student, nil
}

// Update implements store.StudentStore.Update.
func (s *PostgresStudentStore) Update(ctx context.Context, student *domain.Student) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := student.Validate(); err != nil {
		log.Warn("student validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("student_code", student.Code))
		return err
	}

	student.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE students
		SET name = $1, social_name = $2, birth_date = $3, sex = $4, mother_name = $5,
			father_name = $6, twin = $7, missing_school_history = $8, exclusive_aee = $9,
			archive_status = $10, updated_at = $11
		WHERE code = $12
	`
	result, err := s.db.ExecContext(ctx, query,
		student.Name, student.SocialName, student.BirthDate, student.Sex, student.MotherName,
		student.FatherName, student.Twin, student.MissingSchoolHistory, student.ExclusiveAEE,
		student.ArchiveStatus, student.UpdatedAt, student.Code,
	)
	if err != nil {
		log.Error("failed to update student",
			slog.String("error", err.Error()),
			slog.Int64("student_code", student.Code))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStudentNotFound); err != nil {
		return err
	}

	log.Debug("student updated", slog.Int64("student_code", student.Code))
	return nil
}

// Delete implements store.StudentStore.Delete.
func (s *PostgresStudentStore) Delete(ctx context.Context, code int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE code = $1`, code)
	if err != nil {
		log.Error("failed to delete student",
			slog.String("error", err.Error()),
			slog.Int64("student_code", code))
		if IsForeignKeyViolation(err) {
			return store.NewStoreError("student", "delete", "student has dependent records", domain.ErrHasDependents)
		}
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrStudentNotFound); err != nil {
		return err
	}

	log.Info("student deleted", slog.Int64("student_code", code))
	return nil
}

// List implements store.StudentStore.List.
func (s *PostgresStudentStore) List(ctx context.Context, filter store.StudentFilter) ([]*domain.Student, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	if name := strings.TrimSpace(filter.Name); name != "" {
		args = append(args, "%"+name+"%")
		where = append(where, "name ILIKE $"+strconv.Itoa(len(args)))
	}
	if filter.ArchiveStatus != "" {
		args = append(args, filter.ArchiveStatus)
		where = append(where, "archive_status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + studentColumns + ` FROM students`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, code"
	query += limitOffset(&args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list students", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var students []*domain.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating student rows", slog.String("error", err.Error()))
		return nil, err
	}
	return students, nil
}

// WithTx implements store.StudentStore.WithTx.
func (s *PostgresStudentStore) WithTx(tx *sql.Tx) store.StudentStore {
	return &PostgresStudentStore{db: tx, logger: s.logger}
}
