package service

import (
	"bytes"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guto-escola/guto-api/internal/domain"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// harness wires every service to testify mocks and a sqlmock database.
type harness struct {
	db  *sql.DB
	sql sqlmock.Sqlmock
	log *bytes.Buffer

	students        *MockStudentStore
	staff           *MockStaffStore
	classes         *MockClassStore
	enrollments     *MockEnrollmentStore
	subjects        *MockSubjectStore
	divisions       *MockDivisionStore
	concepts        *MockConceptStore
	evaluationTypes *MockEvaluationTypeStore
	evaluations     *MockEvaluationStore
	grades          *MockGradeStore
	gradebooks      *MockGradebookStore
	lessons         *MockLessonStore
	activityStore   *MockActivityStore
	dashboard       *MockDashboardStore

	stores   Stores
	activity *ActivityRecorder
	logger   *slog.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	h := &harness{
		db:              db,
		sql:             sqlMock,
		log:             &bytes.Buffer{},
		students:        &MockStudentStore{},
		staff:           &MockStaffStore{},
		classes:         &MockClassStore{},
		enrollments:     &MockEnrollmentStore{},
		subjects:        &MockSubjectStore{},
		divisions:       &MockDivisionStore{},
		concepts:        &MockConceptStore{},
		evaluationTypes: &MockEvaluationTypeStore{},
		evaluations:     &MockEvaluationStore{},
		grades:          &MockGradeStore{},
		gradebooks:      &MockGradebookStore{},
		lessons:         &MockLessonStore{},
		activityStore:   &MockActivityStore{},
		dashboard:       &MockDashboardStore{},
	}
	h.logger = slog.New(slog.NewJSONHandler(h.log, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h.stores = Stores{
		Students:        h.students,
		Staff:           h.staff,
		Classes:         h.classes,
		Enrollments:     h.enrollments,
		Subjects:        h.subjects,
		Divisions:       h.divisions,
		Concepts:        h.concepts,
		EvaluationTypes: h.evaluationTypes,
		Evaluations:     h.evaluations,
		Grades:          h.grades,
		Gradebooks:      h.gradebooks,
		Lessons:         h.lessons,
		Activity:        h.activityStore,
		Dashboard:       h.dashboard,
	}
	h.activity, err = NewActivityRecorder(h.activityStore, h.logger, h.clock())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, h.sql.ExpectationsWereMet())
		for _, m := range []interface{ AssertExpectations(mock.TestingT) bool }{
			h.students, h.staff, h.classes, h.enrollments, h.subjects, h.divisions, h.concepts,
			h.evaluationTypes, h.evaluations, h.grades, h.gradebooks, h.lessons, h.activityStore, h.dashboard,
		} {
			m.AssertExpectations(t)
		}
		_ = db.Close()
	})
	return h
}

func (h *harness) clock() Option {
	return WithClock(func() time.Time { return testNow })
}

// expectActivity expects one activity entry written under its savepoint.
func (h *harness) expectActivity() {
	h.sql.ExpectExec("SAVEPOINT activity_log").WillReturnResult(sqlmock.NewResult(0, 0))
	h.sql.ExpectExec("RELEASE SAVEPOINT activity_log").WillReturnResult(sqlmock.NewResult(0, 0))
}

// allowActivity accepts any number of appended entries.
func (h *harness) allowActivity() {
	h.activityStore.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func testActor() domain.Actor {
	return domain.Actor{UserID: uuid.MustParse("6f1c2a4e-1111-4a5b-9c3d-000000000001"), Username: "secretaria"}
}

func testStudent(code int64, name string) *domain.Student {
	return &domain.Student{
		Code:          code,
		Name:          name,
		BirthDate:     time.Date(2015, time.May, 4, 0, 0, 0, 0, time.UTC),
		Sex:           domain.SexFemale,
		ArchiveStatus: domain.ArchiveCurrent,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}

func testClass(t *testing.T, capacity int) *domain.Class {
	t.Helper()
	class, err := domain.NewClass("5º Ano A", "2026", domain.ElementaryI, domain.LevelYear5, domain.ShiftMorning, testActor().UserID)
	require.NoError(t, err)
	class.Capacity = capacity
	return class
}

func testSubject(t *testing.T, mode domain.GradingMode) *domain.Subject {
	t.Helper()
	subject, err := domain.NewSubject("Matemática", mode, 4)
	require.NoError(t, err)
	subject.Code = "MAT001"
	return subject
}

func testDivision(t *testing.T) *domain.PeriodDivision {
	t.Helper()
	division, err := domain.NewPeriodDivision("1º Bimestre", domain.DivisionBimester, "2026", 1,
		time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return division
}

func testEvaluation(t *testing.T, class *domain.Class, subject *domain.Subject, division *domain.PeriodDivision) *domain.Evaluation {
	t.Helper()
	evaluation, err := domain.NewEvaluation(domain.EvaluationParams{
		ClassID:    class.ID,
		SubjectID:  subject.ID,
		DivisionID: division.ID,
		TypeID:     uuid.New(),
		Name:       "Prova 1",
		AppliedOn:  time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		MaxValue:   10,
	}, testActor(), testNow)
	require.NoError(t, err)
	return evaluation
}
