//go:build integration

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/platform/postgres"
	"github.com/guto-escola/guto-api/internal/service"
	"github.com/guto-escola/guto-api/internal/testdb"
)

func postgresStores(db *sql.DB) service.Stores {
	log, _ := logger.NewTestLogger()
	return service.Stores{
		Students:        postgres.NewPostgresStudentStore(db, log),
		Staff:           postgres.NewPostgresStaffStore(db, log),
		Classes:         postgres.NewPostgresClassStore(db, log),
		Enrollments:     postgres.NewPostgresEnrollmentStore(db, log),
		Subjects:        postgres.NewPostgresSubjectStore(db, log),
		Divisions:       postgres.NewPostgresPeriodDivisionStore(db, log),
		Concepts:        postgres.NewPostgresConceptStore(db, log),
		EvaluationTypes: postgres.NewPostgresEvaluationTypeStore(db, log),
		Evaluations:     postgres.NewPostgresEvaluationStore(db, log),
		Grades:          postgres.NewPostgresGradeStore(db, log),
		Gradebooks:      postgres.NewPostgresGradebookStore(db, log),
		Lessons:         postgres.NewPostgresLessonStore(db, log),
		Activity:        postgres.NewPostgresActivityStore(db, log),
		Dashboard:       postgres.NewPostgresDashboardStore(db, log),
	}
}

// raceFixture commits its rows so that concurrent transactions can see them,
// and removes them when the test ends.
type raceFixture struct {
	t      *testing.T
	db     *sql.DB
	stores service.Stores
	actor  domain.Actor
	svc    *service.EnrollmentService
}

func newRaceFixture(t *testing.T) *raceFixture {
	t.Helper()
	db := testdb.GetTestDBWithT(t)
	stores := postgresStores(db)
	log, _ := logger.NewTestLogger()

	activity, err := service.NewActivityRecorder(stores.Activity, log)
	require.NoError(t, err)
	svc, err := service.NewEnrollmentService(db, stores, activity, log)
	require.NoError(t, err)

	return &raceFixture{
		t:      t,
		db:     db,
		stores: stores,
		actor:  domain.Actor{UserID: uuid.New(), Username: "secretaria"},
		svc:    svc,
	}
}

func (f *raceFixture) student(ctx context.Context) *domain.Student {
	f.t.Helper()
	s, err := domain.NewStudent("Aluno "+uuid.NewString()[:8], time.Date(2016, 1, 10, 0, 0, 0, 0, time.UTC), domain.SexMale)
	require.NoError(f.t, err)
	require.NoError(f.t, f.stores.Students.Create(ctx, s))
	f.t.Cleanup(func() {
		_, _ = f.db.Exec(`DELETE FROM enrollments WHERE student_code = $1`, s.Code)
		_, _ = f.db.Exec(`DELETE FROM students WHERE code = $1`, s.Code)
	})
	return s
}

func (f *raceFixture) class(ctx context.Context, capacity int) *domain.Class {
	f.t.Helper()
	c, err := domain.NewClass("Turma "+uuid.NewString()[:8], "2026",
		domain.ElementaryI, domain.LevelYear2, domain.ShiftAfternoon, f.actor.UserID)
	require.NoError(f.t, err)
	c.Capacity = capacity
	require.NoError(f.t, f.stores.Classes.Create(ctx, c))
	f.t.Cleanup(func() {
		_, _ = f.db.Exec(`DELETE FROM enrollments WHERE class_id = $1`, c.ID)
		_, _ = f.db.Exec(`DELETE FROM classes WHERE id = $1`, c.ID)
	})
	return c
}

func TestEnroll_ConcurrentEnrollmentsOfOneStudent(t *testing.T) {
	f := newRaceFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), testdb.TestTimeout)
	defer cancel()

	student := f.student(ctx)
	classes := make([]*domain.Class, 5)
	for i := range classes {
		classes[i] = f.class(ctx, 30)
	}

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for _, class := range classes {
		g.Go(func() error {
			_, err := f.svc.Enroll(ctx, f.actor, student.Code, class.ID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrAlreadyEnrolled):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(len(classes)-1), rejected.Load())

	active, err := f.stores.Enrollments.GetActiveByStudent(ctx, student.Code)
	require.NoError(t, err)
	assert.True(t, active.Active)
}

func TestEnroll_ConcurrentEnrollmentsIntoLastSeat(t *testing.T) {
	f := newRaceFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), testdb.TestTimeout)
	defer cancel()

	class := f.class(ctx, 1)
	students := make([]*domain.Student, 6)
	for i := range students {
		students[i] = f.student(ctx)
	}

	var succeeded, rejected atomic.Int32
	var g errgroup.Group
	for _, student := range students {
		g.Go(func() error {
			_, err := f.svc.Enroll(ctx, f.actor, student.Code, class.ID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrCapacityExceeded):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(len(students)-1), rejected.Load())

	count, err := f.stores.Enrollments.CountActiveByClass(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
