package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// PostgresLessonStore implements store.LessonStore on PostgreSQL.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonStore creates a lesson store. A nil logger means slog.Default().
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLessonStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_store")),
	}
}

var _ store.LessonStore = (*PostgresLessonStore)(nil)

// CreateLesson implements store.LessonStore.CreateLesson.
func (s *PostgresLessonStore) CreateLesson(ctx context.Context, lesson *domain.Lesson) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lesson.Validate(); err != nil {
		log.Warn("lesson validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO lessons (id, class_id, subject_id, lesson_date, start_time, end_time, content,
			teacher_code, attendance_taken, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		lesson.ID, lesson.ClassID, lesson.SubjectID, lesson.Date, lesson.StartTime, lesson.EndTime,
		lesson.Content, lesson.TeacherCode, lesson.AttendanceTaken, lesson.CreatedBy, lesson.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create lesson",
			slog.String("error", err.Error()),
			slog.String("class_id", lesson.ClassID.String()))
		return MapError(err)
	}

	log.Info("lesson registered",
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("class_id", lesson.ClassID.String()))
	return nil
}

// GetLesson implements store.LessonStore.GetLesson.
func (s *PostgresLessonStore) GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	var (
		l       domain.Lesson
		teacher sql.NullInt64
	)
	query := `
		SELECT id, class_id, subject_id, lesson_date, start_time, end_time, content,
			teacher_code, attendance_taken, created_by, created_at
		FROM lessons WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.ClassID, &l.SubjectID, &l.Date, &l.StartTime, &l.EndTime, &l.Content,
		&teacher, &l.AttendanceTaken, &l.CreatedBy, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLessonNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", id.String()))
		return nil, MapError(err)
	}
	if teacher.Valid {
		code := teacher.Int64
		l.TeacherCode = &code
	}
	return &l, nil
}

// SaveAttendance implements store.LessonStore.SaveAttendance.
// Callers run it inside a transaction so the records and the taken flag land together.
func (s *PostgresLessonStore) SaveAttendance(ctx context.Context, lessonID uuid.UUID, records []*domain.AttendanceRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO attendance_records (id, lesson_id, student_code, situation, notes, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (lesson_id, student_code) DO UPDATE SET
			situation = EXCLUDED.situation,
			notes = EXCLUDED.notes,
			recorded_by = EXCLUDED.recorded_by,
			recorded_at = EXCLUDED.recorded_at
	`
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		_, err := s.db.ExecContext(ctx, query,
			r.ID, lessonID, r.StudentCode, r.Situation, r.Notes, r.RecordedBy, r.RecordedAt)
		if err != nil {
			log.Error("failed to save attendance record",
				slog.String("error", err.Error()),
				slog.String("lesson_id", lessonID.String()),
				slog.Int64("student_code", r.StudentCode))
			return MapError(err)
		}
	}

	result, err := s.db.ExecContext(ctx, `UPDATE lessons SET attendance_taken = TRUE WHERE id = $1`, lessonID)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrLessonNotFound); err != nil {
		return err
	}

	log.Info("attendance saved",
		slog.String("lesson_id", lessonID.String()),
		slog.Int("records", len(records)))
	return nil
}

// ListAttendance implements store.LessonStore.ListAttendance.
func (s *PostgresLessonStore) ListAttendance(ctx context.Context, lessonID uuid.UUID) ([]*domain.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lesson_id, student_code, situation, notes, recorded_by, recorded_at
		FROM attendance_records WHERE lesson_id = $1 ORDER BY student_code`, lessonID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.AttendanceRecord
	for rows.Next() {
		var (
			r         domain.AttendanceRecord
			situation string
		)
		if err := rows.Scan(&r.ID, &r.LessonID, &r.StudentCode, &situation, &r.Notes, &r.RecordedBy, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Situation = domain.AttendanceSituation(situation)
		records = append(records, &r)
	}
	return records, rows.Err()
}

// lessonScope renders the lesson filter using the table alias l.
func lessonScope(args *[]any, scope store.AttendanceScope) string {
	*args = append(*args, scope.ClassID, scope.SubjectID)
	where := ` l.class_id = $` + strconv.Itoa(len(*args)-1) + ` AND l.subject_id = $` + strconv.Itoa(len(*args))
	if scope.From != nil {
		*args = append(*args, *scope.From)
		where += ` AND l.lesson_date >= $` + strconv.Itoa(len(*args))
	}
	if scope.To != nil {
		*args = append(*args, *scope.To)
		where += ` AND l.lesson_date <= $` + strconv.Itoa(len(*args))
	}
	return where
}

// CountLessons implements store.LessonStore.CountLessons.
func (s *PostgresLessonStore) CountLessons(ctx context.Context, scope store.AttendanceScope) (int, error) {
	var args []any
	query := `SELECT COUNT(*) FROM lessons l WHERE l.attendance_taken AND` + lessonScope(&args, scope)

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CountAbsences implements store.LessonStore.CountAbsences.
func (s *PostgresLessonStore) CountAbsences(ctx context.Context, studentCode int64, scope store.AttendanceScope) (int, error) {
	args := []any{studentCode, string(domain.AttendanceAbsent)}
	query := `
		SELECT COUNT(*)
		FROM attendance_records a
		JOIN lessons l ON l.id = a.lesson_id
		WHERE a.student_code = $1 AND a.situation = $2 AND` + lessonScope(&args, scope) + `
			AND NOT EXISTS (
				SELECT 1 FROM medical_certificates mc
				WHERE mc.student_code = a.student_code AND mc.class_id = l.class_id
					AND l.lesson_date BETWEEN mc.issued_on AND mc.issued_on + (mc.days - 1)
			)`

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CreateCertificate implements store.LessonStore.CreateCertificate.
func (s *PostgresLessonStore) CreateCertificate(ctx context.Context, c *domain.MedicalCertificate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		log.Warn("certificate validation failed during create", slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medical_certificates (id, student_code, class_id, issued_on, days, reason,
			description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.StudentCode, c.ClassID, c.IssuedOn, c.Days, c.Reason, c.Description, c.CreatedBy, c.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create medical certificate",
			slog.String("error", err.Error()),
			slog.Int64("student_code", c.StudentCode))
		return MapError(err)
	}

	log.Info("medical certificate registered",
		slog.String("certificate_id", c.ID.String()),
		slog.Int64("student_code", c.StudentCode),
		slog.Int("days", c.Days))
	return nil
}

// ListCertificates implements store.LessonStore.ListCertificates.
func (s *PostgresLessonStore) ListCertificates(
	ctx context.Context,
	studentCode int64,
	classID uuid.UUID,
) ([]*domain.MedicalCertificate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_code, class_id, issued_on, days, reason, description, created_by, created_at
		FROM medical_certificates
		WHERE student_code = $1 AND class_id = $2
		ORDER BY issued_on DESC`, studentCode, classID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var certificates []*domain.MedicalCertificate
	for rows.Next() {
		var c domain.MedicalCertificate
		if err := rows.Scan(&c.ID, &c.StudentCode, &c.ClassID, &c.IssuedOn, &c.Days, &c.Reason,
			&c.Description, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		certificates = append(certificates, &c)
	}
	return certificates, rows.Err()
}

// WithTx implements store.LessonStore.WithTx.
func (s *PostgresLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return &PostgresLessonStore{db: tx, logger: s.logger}
}
