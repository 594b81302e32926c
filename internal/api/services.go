package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/service"
	"github.com/guto-escola/guto-api/internal/store"
)

// The handlers depend on these narrow views of the services so that tests
// can substitute them.

// RegistryService manages the school's reference records.
type RegistryService interface {
	CreateStudent(ctx context.Context, actor domain.Actor, student *domain.Student) error
	GetStudent(ctx context.Context, code int64) (*domain.Student, error)
	ListStudents(ctx context.Context, filter store.StudentFilter) ([]*domain.Student, error)
	UpdateStudent(ctx context.Context, actor domain.Actor, student *domain.Student) error
	ArchiveStudent(ctx context.Context, actor domain.Actor, code int64) (*domain.Student, error)
	DeleteStudent(ctx context.Context, actor domain.Actor, code int64) error

	CreateStaff(ctx context.Context, actor domain.Actor, staff *domain.Staff) error
	GetStaff(ctx context.Context, code int64) (*domain.Staff, error)
	ListStaff(ctx context.Context, filter store.StaffFilter) ([]*domain.Staff, error)
	UpdateStaff(ctx context.Context, actor domain.Actor, staff *domain.Staff) error

	CreateClass(ctx context.Context, actor domain.Actor, p service.ClassParams) (*domain.Class, error)
	GetClassSummary(ctx context.Context, id uuid.UUID) (*service.ClassSummary, error)
	ListClasses(ctx context.Context, period string) ([]*domain.Class, error)
	UpdateCapacity(ctx context.Context, actor domain.Actor, classID uuid.UUID, capacity int) (*domain.Class, error)
	DeleteClass(ctx context.Context, actor domain.Actor, classID uuid.UUID) error

	CreateSubject(ctx context.Context, actor domain.Actor, name string, mode domain.GradingMode, weeklyHours int) (*domain.Subject, error)
	ListSubjects(ctx context.Context, activeOnly bool) ([]*domain.Subject, error)
	CreateDivision(ctx context.Context, actor domain.Actor, division *domain.PeriodDivision) error
	ListDivisions(ctx context.Context, period string, activeOnly bool) ([]*domain.PeriodDivision, error)
	CreateConcept(ctx context.Context, actor domain.Actor, concept *domain.Concept) error
	ListConcepts(ctx context.Context, activeOnly bool) ([]*domain.Concept, error)
	CreateEvaluationType(ctx context.Context, actor domain.Actor, t *domain.EvaluationType) error
	ListEvaluationTypes(ctx context.Context, activeOnly bool) ([]*domain.EvaluationType, error)
}

// EnrollmentService places students in classes.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor domain.Actor, studentCode int64, classID uuid.UUID) (*domain.Enrollment, error)
	Disenroll(ctx context.Context, actor domain.Actor, enrollmentID uuid.UUID, reason string) (*domain.Enrollment, error)
	Transfer(ctx context.Context, actor domain.Actor, studentCode int64, toClassID uuid.UUID, reason string) (*domain.Enrollment, error)
	GetActiveRoster(ctx context.Context, classID uuid.UUID) ([]domain.RosterEntry, error)
	SetRosterPosition(ctx context.Context, actor domain.Actor, enrollmentID uuid.UUID, position int) (*domain.Enrollment, error)
	History(ctx context.Context, studentCode int64) ([]*domain.Enrollment, error)
}

// GradingService records evaluations and grades and derives results.
type GradingService interface {
	CreateEvaluation(ctx context.Context, actor domain.Actor, p domain.EvaluationParams) (*domain.Evaluation, error)
	GetEvaluation(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error)
	ListEvaluations(ctx context.Context, scope store.EvaluationScope) ([]*domain.Evaluation, error)
	RecordGrade(ctx context.Context, actor domain.Actor, evaluationID uuid.UUID, studentCode int64, in domain.GradeInput) (*domain.Grade, error)
	ListGrades(ctx context.Context, evaluationID uuid.UUID) ([]*domain.Grade, error)
	ComputeAverage(ctx context.Context, studentCode int64, scope store.EvaluationScope) (service.AverageResult, error)
	ComputeAttendance(ctx context.Context, studentCode int64, scope store.AttendanceScope) (service.AttendanceResult, error)
	StudentReport(ctx context.Context, studentCode int64) (*service.StudentReport, error)
	RecordRecovery(ctx context.Context, actor domain.Actor, p service.RecoveryParams) (*domain.Recovery, error)
	GetRecovery(ctx context.Context, classID, subjectID uuid.UUID, studentCode int64) (*domain.Recovery, error)
}

// GradebookService drives the gradebook lifecycle and lesson attendance.
type GradebookService interface {
	Open(ctx context.Context, classID, subjectID uuid.UUID) (*domain.Gradebook, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]*domain.Gradebook, error)
	Close(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error)
	Reopen(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error)
	RegisterLesson(ctx context.Context, actor domain.Actor, p service.LessonParams) (*domain.Lesson, error)
	RecordAttendance(ctx context.Context, actor domain.Actor, lessonID uuid.UUID, entries []service.AttendanceEntry) ([]*domain.AttendanceRecord, error)
	Frequency(ctx context.Context, gradebookID uuid.UUID) ([]service.StudentFrequency, error)
	RegisterCertificate(ctx context.Context, actor domain.Actor, p service.CertificateParams) (*domain.MedicalCertificate, error)
	ListCertificates(ctx context.Context, studentCode int64, classID uuid.UUID) ([]*domain.MedicalCertificate, error)
}

// DashboardService provides the home page aggregates.
type DashboardService interface {
	Summary(ctx context.Context, period string) (*service.DashboardSummary, error)
	RecentActivity(ctx context.Context, limit int) ([]*domain.ActivityEntry, error)
}

var (
	_ RegistryService   = (*service.RegistryService)(nil)
	_ EnrollmentService = (*service.EnrollmentService)(nil)
	_ GradingService    = (*service.GradingService)(nil)
	_ GradebookService  = (*service.GradebookService)(nil)
	_ DashboardService  = (*service.DashboardService)(nil)
)
