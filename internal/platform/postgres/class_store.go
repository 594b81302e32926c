package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresClassStore implements store.ClassStore on PostgreSQL.
type PostgresClassStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClassStore creates a class store. A nil logger means slog.Default().
func NewPostgresClassStore(db store.DBTX, logger *slog.Logger) *PostgresClassStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClassStore{
		db:     db,
		logger: logger.With(slog.String("component", "class_store")),
	}
}

var _ store.ClassStore = (*PostgresClassStore)(nil)

var classConstraints = map[string]error{
	"classes_name_period_key": store.ErrClassNameTaken,
}

const classColumns = `id, name, period, education_type, grade_level, shift, capacity,
	roster_order, homeroom_teacher_code, created_by, created_at, updated_at`

func scanClass(row rowScanner) (*domain.Class, error) {
	var (
		c                                  domain.Class
		eduType, level, shift, rosterOrder string
		homeroom                           sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Period, &eduType, &level, &shift, &c.Capacity,
		&rosterOrder, &homeroom, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.EducationType = domain.EducationType(eduType)
	c.GradeLevel = domain.GradeLevel(level)
	c.Shift = domain.Shift(shift)
	c.RosterOrder = domain.RosterOrder(rosterOrder)
	if homeroom.Valid {
		code := homeroom.Int64
		c.HomeroomTeacherCode = &code
	}
	return &c, nil
}

// Create implements store.ClassStore.Create.
func (s *PostgresClassStore) Create(ctx context.Context, class *domain.Class) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := class.Validate(); err != nil {
		log.Warn("class validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO classes (id, name, period, education_type, grade_level, shift, capacity,
			roster_order, homeroom_teacher_code, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		class.ID, class.Name, class.Period, class.EducationType, class.GradeLevel, class.Shift,
		class.Capacity, class.RosterOrder, class.HomeroomTeacherCode, class.CreatedBy,
		class.CreatedAt, class.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create class",
			slog.String("error", err.Error()),
			slog.String("class_id", class.ID.String()))
		return MapConstraint(err, classConstraints)
	}

	log.Info("class created",
		slog.String("class_id", class.ID.String()),
		slog.String("period", class.Period))
	return nil
}

func (s *PostgresClassStore) get(ctx context.Context, id uuid.UUID, lock string) (*domain.Class, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1` + lock
	class, err := scanClass(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("class not found", slog.String("class_id", id.String()))
			return nil, store.ErrClassNotFound
		}
		log.Error("failed to get class", slog.String("error", err.Error()), slog.String("class_id", id.String()))
		return nil, MapError(err)
	}
	return class, nil
}

// GetByID implements store.ClassStore.GetByID.
func (s *PostgresClassStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	return s.get(ctx, id, "")
}

// GetByIDForUpdate implements store.ClassStore.GetByIDForUpdate.
func (s *PostgresClassStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	return s.get(ctx, id, " FOR UPDATE")
}

// Update implements store.ClassStore.Update.
func (s *PostgresClassStore) Update(ctx context.Context, class *domain.Class) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := class.Validate(); err != nil {
		return err
	}

	class.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE classes
		SET name = $1, period = $2, education_type = $3, grade_level = $4, shift = $5,
			capacity = $6, roster_order = $7, homeroom_teacher_code = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		class.Name, class.Period, class.EducationType, class.GradeLevel, class.Shift,
		class.Capacity, class.RosterOrder, class.HomeroomTeacherCode, class.UpdatedAt, class.ID,
	)
	if err != nil {
		log.Error("failed to update class",
			slog.String("error", err.Error()),
			slog.String("class_id", class.ID.String()))
		return MapConstraint(err, classConstraints)
	}
	return CheckRowsAffected(result, store.ErrClassNotFound)
}

// Delete implements store.ClassStore.Delete.
func (s *PostgresClassStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete class", slog.String("error", err.Error()), slog.String("class_id", id.String()))
		if IsForeignKeyViolation(err) {
			return store.NewStoreError("class", "delete", "class has dependent records", domain.ErrHasDependents)
		}
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrClassNotFound); err != nil {
		return err
	}

	log.Info("class deleted", slog.String("class_id", id.String()))
	return nil
}

// List implements store.ClassStore.List.
func (s *PostgresClassStore) List(ctx context.Context, period string) ([]*domain.Class, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + classColumns + ` FROM classes`
	var args []any
	if period != "" {
		query += ` WHERE period = $1`
		args = append(args, period)
	}
	query += ` ORDER BY period DESC, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list classes", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var classes []*domain.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// WithTx implements store.ClassStore.WithTx.
func (s *PostgresClassStore) WithTx(tx *sql.Tx) store.ClassStore {
	return &PostgresClassStore{db: tx, logger: s.logger}
}
