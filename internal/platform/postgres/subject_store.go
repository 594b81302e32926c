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

// subjectCodeLockKey identifies the advisory lock serialising subject code allocation.
const subjectCodeLockKey = "guto.subject_code"

// PostgresSubjectStore implements store.SubjectStore on PostgreSQL.
type PostgresSubjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubjectStore creates a subject store. A nil logger means slog.Default().
func NewPostgresSubjectStore(db store.DBTX, logger *slog.Logger) *PostgresSubjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSubjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "subject_store")),
	}
}

var _ store.SubjectStore = (*PostgresSubjectStore)(nil)

const subjectColumns = `id, name, code, grading_mode, weekly_hours, active, created_at, updated_at`

func scanSubject(row rowScanner) (*domain.Subject, error) {
	var s domain.Subject
	var mode string
	if err := row.Scan(&s.ID, &s.Name, &s.Code, &mode, &s.WeeklyHours, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.GradingMode = domain.GradingMode(mode)
	return &s, nil
}

// LockCodeAllocation implements store.SubjectStore.LockCodeAllocation.
// The lock is released when the surrounding transaction ends.
func (s *PostgresSubjectStore) LockCodeAllocation(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, subjectCodeLockKey); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to take subject code lock",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// ListCodesWithPrefix implements store.SubjectStore.ListCodesWithPrefix.
func (s *PostgresSubjectStore) ListCodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code FROM subjects WHERE starts_with(code, $1) ORDER BY code`, prefix)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list subject codes",
			slog.String("error", err.Error()),
			slog.String("prefix", prefix))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// Create implements store.SubjectStore.Create.
func (s *PostgresSubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subject.Validate(); err != nil {
		log.Warn("subject validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO subjects (id, name, code, grading_mode, weekly_hours, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		subject.ID, subject.Name, subject.Code, subject.GradingMode, subject.WeeklyHours,
		subject.Active, subject.CreatedAt, subject.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create subject", slog.String("error", err.Error()), slog.String("code", subject.Code))
		return MapUniqueViolation(err, "subject", "subjects_code_key", store.ErrSubjectCodeTaken)
	}

	log.Info("subject created", slog.String("subject_id", subject.ID.String()), slog.String("code", subject.Code))
	return nil
}

// GetByID implements store.SubjectStore.GetByID.
func (s *PostgresSubjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	subject, err := scanSubject(s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSubjectNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", id.String()))
		return nil, MapError(err)
	}
	return subject, nil
}

// List implements store.SubjectStore.List.
func (s *PostgresSubjectStore) List(ctx context.Context, activeOnly bool) ([]*domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list subjects", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []*domain.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// WithTx implements store.SubjectStore.WithTx.
func (s *PostgresSubjectStore) WithTx(tx *sql.Tx) store.SubjectStore {
	return &PostgresSubjectStore{db: tx, logger: s.logger}
}
