package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/guto-escola/guto-api/internal/domain"
)

// AttendanceScope selects the lessons of a class and subject, optionally
// within an inclusive date range.
type AttendanceScope struct {
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	From      *time.Time
	To        *time.Time
}

// LessonStore defines the interface for lesson and attendance persistence.
type LessonStore interface {
	// CreateLesson saves a new lesson.
	CreateLesson(ctx context.Context, lesson *domain.Lesson) error

	// GetLesson returns ErrLessonNotFound if the lesson does not exist.
	GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// SaveAttendance writes one record per student for the lesson, replacing
	// earlier records of the same students, and marks the lesson as taken.
	SaveAttendance(ctx context.Context, lessonID uuid.UUID, records []*domain.AttendanceRecord) error

	// ListAttendance returns the records of a lesson by student code.
	ListAttendance(ctx context.Context, lessonID uuid.UUID) ([]*domain.AttendanceRecord, error)

	// CountLessons counts lessons in scope whose attendance was taken.
	CountLessons(ctx context.Context, scope AttendanceScope) (int, error)

	// CountAbsences counts ABSENT records of the student in scope. Lessons
	// on days covered by one of the student's medical certificates for the
	// class are left out.
	CountAbsences(ctx context.Context, studentCode int64, scope AttendanceScope) (int, error)

	// CreateCertificate saves a medical certificate.
	CreateCertificate(ctx context.Context, certificate *domain.MedicalCertificate) error

	// ListCertificates returns the certificates of a student in a class,
	// newest first.
	ListCertificates(ctx context.Context, studentCode int64, classID uuid.UUID) ([]*domain.MedicalCertificate, error)

	WithTx(tx *sql.Tx) LessonStore
}
