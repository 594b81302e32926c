package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/store"
)

// ret returns argument i as T, or the zero value when it is nil.
func ret[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type MockStudentStore struct{ mock.Mock }

func (m *MockStudentStore) Create(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentStore) GetByCode(ctx context.Context, code int64) (*domain.Student, error) {
	args := m.Called(ctx, code)
	return ret[*domain.Student](args, 0), args.Error(1)
}

func (m *MockStudentStore) Update(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentStore) Delete(ctx context.Context, code int64) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockStudentStore) List(ctx context.Context, filter store.StudentFilter) ([]*domain.Student, error) {
	args := m.Called(ctx, filter)
	return ret[[]*domain.Student](args, 0), args.Error(1)
}

func (m *MockStudentStore) WithTx(*sql.Tx) store.StudentStore { return m }

type MockStaffStore struct{ mock.Mock }

func (m *MockStaffStore) Create(ctx context.Context, staff *domain.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *MockStaffStore) GetByCode(ctx context.Context, code int64) (*domain.Staff, error) {
	args := m.Called(ctx, code)
	return ret[*domain.Staff](args, 0), args.Error(1)
}

func (m *MockStaffStore) Update(ctx context.Context, staff *domain.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *MockStaffStore) List(ctx context.Context, filter store.StaffFilter) ([]*domain.Staff, error) {
	args := m.Called(ctx, filter)
	return ret[[]*domain.Staff](args, 0), args.Error(1)
}

func (m *MockStaffStore) WithTx(*sql.Tx) store.StaffStore { return m }

type MockClassStore struct{ mock.Mock }

func (m *MockClassStore) Create(ctx context.Context, class *domain.Class) error {
	return m.Called(ctx, class).Error(0)
}

func (m *MockClassStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Class](args, 0), args.Error(1)
}

func (m *MockClassStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Class](args, 0), args.Error(1)
}

func (m *MockClassStore) Update(ctx context.Context, class *domain.Class) error {
	return m.Called(ctx, class).Error(0)
}

func (m *MockClassStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClassStore) List(ctx context.Context, period string) ([]*domain.Class, error) {
	args := m.Called(ctx, period)
	return ret[[]*domain.Class](args, 0), args.Error(1)
}

func (m *MockClassStore) WithTx(*sql.Tx) store.ClassStore { return m }

type MockEnrollmentStore struct{ mock.Mock }

func (m *MockEnrollmentStore) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	return m.Called(ctx, enrollment).Error(0)
}

func (m *MockEnrollmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Enrollment](args, 0), args.Error(1)
}

func (m *MockEnrollmentStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Enrollment](args, 0), args.Error(1)
}

func (m *MockEnrollmentStore) GetActiveByStudent(ctx context.Context, code int64) (*domain.Enrollment, error) {
	args := m.Called(ctx, code)
	return ret[*domain.Enrollment](args, 0), args.Error(1)
}

func (m *MockEnrollmentStore) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	return m.Called(ctx, enrollment).Error(0)
}

func (m *MockEnrollmentStore) CountActiveByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	args := m.Called(ctx, classID)
	return args.Int(0), args.Error(1)
}

func (m *MockEnrollmentStore) CountByStudent(ctx context.Context, code int64) (int, error) {
	args := m.Called(ctx, code)
	return args.Int(0), args.Error(1)
}

func (m *MockEnrollmentStore) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	args := m.Called(ctx, classID)
	return args.Int(0), args.Error(1)
}

func (m *MockEnrollmentStore) IsActiveInClass(ctx context.Context, code int64, classID uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, classID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentStore) ListActiveRoster(ctx context.Context, classID uuid.UUID) ([]domain.RosterEntry, error) {
	args := m.Called(ctx, classID)
	return ret[[]domain.RosterEntry](args, 0), args.Error(1)
}

func (m *MockEnrollmentStore) ListByStudent(ctx context.Context, code int64) ([]*domain.Enrollment, error) {
	args := m.Called(ctx, code)
	return ret[[]*domain.Enrollment](args, 0), args.Error(1)
}

func (m *MockEnrollmentStore) WithTx(*sql.Tx) store.EnrollmentStore { return m }

type MockSubjectStore struct{ mock.Mock }

func (m *MockSubjectStore) LockCodeAllocation(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSubjectStore) ListCodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	return ret[[]string](args, 0), args.Error(1)
}

func (m *MockSubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	return m.Called(ctx, subject).Error(0)
}

func (m *MockSubjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Subject](args, 0), args.Error(1)
}

func (m *MockSubjectStore) List(ctx context.Context, activeOnly bool) ([]*domain.Subject, error) {
	args := m.Called(ctx, activeOnly)
	return ret[[]*domain.Subject](args, 0), args.Error(1)
}

func (m *MockSubjectStore) WithTx(*sql.Tx) store.SubjectStore { return m }

type MockDivisionStore struct{ mock.Mock }

func (m *MockDivisionStore) Create(ctx context.Context, division *domain.PeriodDivision) error {
	return m.Called(ctx, division).Error(0)
}

func (m *MockDivisionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PeriodDivision, error) {
	args := m.Called(ctx, id)
	return ret[*domain.PeriodDivision](args, 0), args.Error(1)
}

func (m *MockDivisionStore) ListByPeriod(
	ctx context.Context,
	period string,
	activeOnly bool,
) ([]*domain.PeriodDivision, error) {
	args := m.Called(ctx, period, activeOnly)
	return ret[[]*domain.PeriodDivision](args, 0), args.Error(1)
}

func (m *MockDivisionStore) WithTx(*sql.Tx) store.PeriodDivisionStore { return m }

type MockConceptStore struct{ mock.Mock }

func (m *MockConceptStore) Create(ctx context.Context, concept *domain.Concept) error {
	return m.Called(ctx, concept).Error(0)
}

func (m *MockConceptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Concept, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Concept](args, 0), args.Error(1)
}

func (m *MockConceptStore) List(ctx context.Context, activeOnly bool) ([]*domain.Concept, error) {
	args := m.Called(ctx, activeOnly)
	return ret[[]*domain.Concept](args, 0), args.Error(1)
}

func (m *MockConceptStore) WithTx(*sql.Tx) store.ConceptStore { return m }

type MockEvaluationTypeStore struct{ mock.Mock }

func (m *MockEvaluationTypeStore) Create(ctx context.Context, t *domain.EvaluationType) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockEvaluationTypeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.EvaluationType, error) {
	args := m.Called(ctx, id)
	return ret[*domain.EvaluationType](args, 0), args.Error(1)
}

func (m *MockEvaluationTypeStore) List(ctx context.Context, activeOnly bool) ([]*domain.EvaluationType, error) {
	args := m.Called(ctx, activeOnly)
	return ret[[]*domain.EvaluationType](args, 0), args.Error(1)
}

func (m *MockEvaluationTypeStore) WithTx(*sql.Tx) store.EvaluationTypeStore { return m }

type MockEvaluationStore struct{ mock.Mock }

func (m *MockEvaluationStore) Create(ctx context.Context, evaluation *domain.Evaluation) error {
	return m.Called(ctx, evaluation).Error(0)
}

func (m *MockEvaluationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Evaluation](args, 0), args.Error(1)
}

func (m *MockEvaluationStore) ListByScope(
	ctx context.Context,
	scope store.EvaluationScope,
) ([]*domain.Evaluation, error) {
	args := m.Called(ctx, scope)
	return ret[[]*domain.Evaluation](args, 0), args.Error(1)
}

func (m *MockEvaluationStore) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	args := m.Called(ctx, classID)
	return args.Int(0), args.Error(1)
}

func (m *MockEvaluationStore) WithTx(*sql.Tx) store.EvaluationStore { return m }

type MockGradeStore struct{ mock.Mock }

func (m *MockGradeStore) Upsert(ctx context.Context, grade *domain.Grade) error {
	return m.Called(ctx, grade).Error(0)
}

func (m *MockGradeStore) GetByEvaluationAndStudent(
	ctx context.Context,
	evaluationID uuid.UUID,
	code int64,
) (*domain.Grade, error) {
	args := m.Called(ctx, evaluationID, code)
	return ret[*domain.Grade](args, 0), args.Error(1)
}

func (m *MockGradeStore) ListByEvaluation(ctx context.Context, evaluationID uuid.UUID) ([]*domain.Grade, error) {
	args := m.Called(ctx, evaluationID)
	return ret[[]*domain.Grade](args, 0), args.Error(1)
}

func (m *MockGradeStore) ListScores(
	ctx context.Context,
	code int64,
	scope store.EvaluationScope,
) ([]domain.WeightedScore, error) {
	args := m.Called(ctx, code, scope)
	return ret[[]domain.WeightedScore](args, 0), args.Error(1)
}

func (m *MockGradeStore) UpsertRecovery(ctx context.Context, recovery *domain.Recovery) error {
	return m.Called(ctx, recovery).Error(0)
}

func (m *MockGradeStore) GetRecovery(
	ctx context.Context,
	classID, subjectID uuid.UUID,
	code int64,
) (*domain.Recovery, error) {
	args := m.Called(ctx, classID, subjectID, code)
	return ret[*domain.Recovery](args, 0), args.Error(1)
}

func (m *MockGradeStore) WithTx(*sql.Tx) store.GradeStore { return m }

type MockGradebookStore struct{ mock.Mock }

func (m *MockGradebookStore) GetOrCreate(ctx context.Context, gradebook *domain.Gradebook) (*domain.Gradebook, error) {
	args := m.Called(ctx, gradebook)
	return ret[*domain.Gradebook](args, 0), args.Error(1)
}

func (m *MockGradebookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Gradebook](args, 0), args.Error(1)
}

func (m *MockGradebookStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Gradebook](args, 0), args.Error(1)
}

func (m *MockGradebookStore) GetByScopeForShare(
	ctx context.Context,
	classID, subjectID uuid.UUID,
	period string,
) (*domain.Gradebook, error) {
	args := m.Called(ctx, classID, subjectID, period)
	return ret[*domain.Gradebook](args, 0), args.Error(1)
}

func (m *MockGradebookStore) Update(ctx context.Context, gradebook *domain.Gradebook) error {
	return m.Called(ctx, gradebook).Error(0)
}

func (m *MockGradebookStore) ListPending(ctx context.Context, gradebook *domain.Gradebook) ([]domain.PendingItem, error) {
	args := m.Called(ctx, gradebook)
	return ret[[]domain.PendingItem](args, 0), args.Error(1)
}

func (m *MockGradebookStore) ListByClass(ctx context.Context, classID uuid.UUID) ([]*domain.Gradebook, error) {
	args := m.Called(ctx, classID)
	return ret[[]*domain.Gradebook](args, 0), args.Error(1)
}

func (m *MockGradebookStore) WithTx(*sql.Tx) store.GradebookStore { return m }

type MockLessonStore struct{ mock.Mock }

func (m *MockLessonStore) CreateLesson(ctx context.Context, lesson *domain.Lesson) error {
	return m.Called(ctx, lesson).Error(0)
}

func (m *MockLessonStore) GetLesson(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	args := m.Called(ctx, id)
	return ret[*domain.Lesson](args, 0), args.Error(1)
}

func (m *MockLessonStore) SaveAttendance(
	ctx context.Context,
	lessonID uuid.UUID,
	records []*domain.AttendanceRecord,
) error {
	return m.Called(ctx, lessonID, records).Error(0)
}

func (m *MockLessonStore) ListAttendance(ctx context.Context, lessonID uuid.UUID) ([]*domain.AttendanceRecord, error) {
	args := m.Called(ctx, lessonID)
	return ret[[]*domain.AttendanceRecord](args, 0), args.Error(1)
}

func (m *MockLessonStore) CountLessons(ctx context.Context, scope store.AttendanceScope) (int, error) {
	args := m.Called(ctx, scope)
	return args.Int(0), args.Error(1)
}

func (m *MockLessonStore) CountAbsences(ctx context.Context, code int64, scope store.AttendanceScope) (int, error) {
	args := m.Called(ctx, code, scope)
	return args.Int(0), args.Error(1)
}

func (m *MockLessonStore) CreateCertificate(ctx context.Context, certificate *domain.MedicalCertificate) error {
	return m.Called(ctx, certificate).Error(0)
}

func (m *MockLessonStore) ListCertificates(
	ctx context.Context,
	code int64,
	classID uuid.UUID,
) ([]*domain.MedicalCertificate, error) {
	args := m.Called(ctx, code, classID)
	return ret[[]*domain.MedicalCertificate](args, 0), args.Error(1)
}

func (m *MockLessonStore) WithTx(*sql.Tx) store.LessonStore { return m }

type MockActivityStore struct{ mock.Mock }

func (m *MockActivityStore) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockActivityStore) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	return ret[[]*domain.ActivityEntry](args, 0), args.Error(1)
}

func (m *MockActivityStore) WithTx(*sql.Tx) store.ActivityStore { return m }

type MockDashboardStore struct{ mock.Mock }

func (m *MockDashboardStore) Counts(ctx context.Context) (store.DashboardCounts, error) {
	args := m.Called(ctx)
	return ret[store.DashboardCounts](args, 0), args.Error(1)
}

func (m *MockDashboardStore) ClassOccupancy(ctx context.Context, period string) ([]store.ClassOccupancy, error) {
	args := m.Called(ctx, period)
	return ret[[]store.ClassOccupancy](args, 0), args.Error(1)
}

func (m *MockDashboardStore) GradebookCounts(ctx context.Context, period string) (store.GradebookCounts, error) {
	args := m.Called(ctx, period)
	return ret[store.GradebookCounts](args, 0), args.Error(1)
}

var (
	_ store.StudentStore        = (*MockStudentStore)(nil)
	_ store.StaffStore          = (*MockStaffStore)(nil)
	_ store.ClassStore          = (*MockClassStore)(nil)
	_ store.EnrollmentStore     = (*MockEnrollmentStore)(nil)
	_ store.SubjectStore        = (*MockSubjectStore)(nil)
	_ store.PeriodDivisionStore = (*MockDivisionStore)(nil)
	_ store.ConceptStore        = (*MockConceptStore)(nil)
	_ store.EvaluationTypeStore = (*MockEvaluationTypeStore)(nil)
	_ store.EvaluationStore     = (*MockEvaluationStore)(nil)
	_ store.GradeStore          = (*MockGradeStore)(nil)
	_ store.GradebookStore      = (*MockGradebookStore)(nil)
	_ store.LessonStore         = (*MockLessonStore)(nil)
	_ store.ActivityStore       = (*MockActivityStore)(nil)
	_ store.DashboardStore      = (*MockDashboardStore)(nil)
)
