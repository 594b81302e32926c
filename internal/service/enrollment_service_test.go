package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/store"
)

func newEnrollmentService(t *testing.T, h *harness) *EnrollmentService {
	t.Helper()
	svc, err := NewEnrollmentService(h.db, h.stores, h.activity, h.logger, h.clock())
	require.NoError(t, err)
	return svc
}

func TestNewEnrollmentService_RequiresDependencies(t *testing.T) {
	h := newHarness(t)

	_, err := NewEnrollmentService(nil, h.stores, h.activity, h.logger)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewEnrollmentService(h.db, h.stores, nil, h.logger)
	assert.ErrorIs(t, err, domain.ErrValidation)

	stores := h.stores
	stores.Enrollments = nil
	_, err = NewEnrollmentService(h.db, stores, h.activity, h.logger)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "stores.Enrollments", verr.Field)
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	student := testStudent(42, "Ana Souza")

	t.Run("creates an active enrollment", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		class := testClass(t, 2)

		h.sql.ExpectBegin()
		h.students.On("GetByCode", mock.Anything, int64(42)).Return(student, nil)
		h.classes.On("GetByIDForUpdate", mock.Anything, class.ID).Return(class, nil)
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(nil, store.ErrEnrollmentNotFound)
		h.enrollments.On("CountActiveByClass", mock.Anything, class.ID).Return(1, nil)
		h.enrollments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Enrollment")).Return(nil)
		h.expectActivity()
		h.activityStore.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.ActivityEntry) bool {
			return e.Action == domain.ActionEnroll && e.Module == domain.ModuleEnrollment && e.ObjectName == "Ana Souza"
		})).Return(nil)
		h.sql.ExpectCommit()

		enrollment, err := svc.Enroll(ctx, testActor(), 42, class.ID)
		require.NoError(t, err)
		assert.True(t, enrollment.Active)
		assert.Equal(t, class.ID, enrollment.ClassID)
		assert.Equal(t, testNow, enrollment.EnrolledAt)
		assert.Equal(t, testActor().UserID, enrollment.EnrolledBy)
	})

	t.Run("rejects a student with an active enrollment", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		class := testClass(t, 30)
		current := &domain.Enrollment{ID: uuid.New(), StudentCode: 42, ClassID: uuid.New(), Active: true}

		h.sql.ExpectBegin()
		h.students.On("GetByCode", mock.Anything, int64(42)).Return(student, nil)
		h.classes.On("GetByIDForUpdate", mock.Anything, class.ID).Return(class, nil)
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(current, nil)
		h.sql.ExpectRollback()

		_, err := svc.Enroll(ctx, testActor(), 42, class.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)
		h.enrollments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a full class", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		class := testClass(t, 1)

		h.sql.ExpectBegin()
		h.students.On("GetByCode", mock.Anything, int64(42)).Return(student, nil)
		h.classes.On("GetByIDForUpdate", mock.Anything, class.ID).Return(class, nil)
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(nil, store.ErrEnrollmentNotFound)
		h.enrollments.On("CountActiveByClass", mock.Anything, class.ID).Return(1, nil)
		h.sql.ExpectRollback()

		_, err := svc.Enroll(ctx, testActor(), 42, class.ID)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})

	t.Run("storage constraint decides a lost race", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		class := testClass(t, 30)

		h.sql.ExpectBegin()
		h.students.On("GetByCode", mock.Anything, int64(42)).Return(student, nil)
		h.classes.On("GetByIDForUpdate", mock.Anything, class.ID).Return(class, nil)
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(nil, store.ErrEnrollmentNotFound)
		h.enrollments.On("CountActiveByClass", mock.Anything, class.ID).Return(0, nil)
		h.enrollments.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyEnrolled)
		h.sql.ExpectRollback()

		_, err := svc.Enroll(ctx, testActor(), 42, class.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)
	})

	t.Run("rejects an archived student", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		archived := testStudent(7, "Bruno Lima")
		archived.ArchiveStatus = domain.ArchivePermanent

		h.sql.ExpectBegin()
		h.students.On("GetByCode", mock.Anything, int64(7)).Return(archived, nil)
		h.sql.ExpectRollback()

		_, err := svc.Enroll(ctx, testActor(), 7, uuid.New())
		assert.ErrorIs(t, err, domain.ErrStudentArchived)
	})

	t.Run("requires an actor", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)

		_, err := svc.Enroll(ctx, domain.Actor{}, 42, uuid.New())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("activity failure does not abort", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		class := testClass(t, 30)

		h.sql.ExpectBegin()
		h.students.On("GetByCode", mock.Anything, int64(42)).Return(student, nil)
		h.classes.On("GetByIDForUpdate", mock.Anything, class.ID).Return(class, nil)
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(nil, store.ErrEnrollmentNotFound)
		h.enrollments.On("CountActiveByClass", mock.Anything, class.ID).Return(0, nil)
		h.enrollments.On("Create", mock.Anything, mock.Anything).Return(nil)
		h.sql.ExpectExec("SAVEPOINT activity_log").WillReturnResult(sqlmock.NewResult(0, 0))
		h.activityStore.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		h.sql.ExpectExec("ROLLBACK TO SAVEPOINT activity_log").WillReturnResult(sqlmock.NewResult(0, 0))
		h.sql.ExpectCommit()

		_, err := svc.Enroll(ctx, testActor(), 42, class.ID)
		require.NoError(t, err)
		assert.Contains(t, h.log.String(), "failed to record activity")
	})
}

func TestDisenroll(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates and keeps history", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		enrollment := &domain.Enrollment{ID: uuid.New(), StudentCode: 42, ClassID: uuid.New(), Active: true}

		h.sql.ExpectBegin()
		h.enrollments.On("GetByIDForUpdate", mock.Anything, enrollment.ID).Return(enrollment, nil)
		h.enrollments.On("Update", mock.Anything, enrollment).Return(nil)
		h.expectActivity()
		h.allowActivity()
		h.sql.ExpectCommit()

		got, err := svc.Disenroll(ctx, testActor(), enrollment.ID, " mudança de cidade ")
		require.NoError(t, err)
		assert.False(t, got.Active)
		assert.Equal(t, "mudança de cidade", got.DisenrollReason)
		require.NotNil(t, got.DisenrolledAt)
		assert.Equal(t, testNow, *got.DisenrolledAt)
	})

	t.Run("rejects an inactive enrollment", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		enrollment := &domain.Enrollment{ID: uuid.New(), StudentCode: 42, ClassID: uuid.New()}

		h.sql.ExpectBegin()
		h.enrollments.On("GetByIDForUpdate", mock.Anything, enrollment.ID).Return(enrollment, nil)
		h.sql.ExpectRollback()

		_, err := svc.Disenroll(ctx, testActor(), enrollment.ID, "")
		assert.ErrorIs(t, err, domain.ErrNotActive)
	})
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	student := testStudent(42, "Ana Souza")

	t.Run("moves the student in one transaction", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		target := testClass(t, 30)
		current := &domain.Enrollment{ID: uuid.New(), StudentCode: 42, ClassID: uuid.New(), Active: true}

		h.sql.ExpectBegin()
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(current, nil).Once()
		h.enrollments.On("GetByIDForUpdate", mock.Anything, current.ID).Return(current, nil)
		h.enrollments.On("Update", mock.Anything, current).Return(nil)
		h.students.On("GetByCode", mock.Anything, int64(42)).Return(student, nil)
		h.classes.On("GetByIDForUpdate", mock.Anything, target.ID).Return(target, nil)
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(nil, store.ErrEnrollmentNotFound).Once()
		h.enrollments.On("CountActiveByClass", mock.Anything, target.ID).Return(3, nil)
		h.enrollments.On("Create", mock.Anything, mock.Anything).Return(nil)
		h.expectActivity()
		h.activityStore.On("Append", mock.Anything, mock.MatchedBy(func(e *domain.ActivityEntry) bool {
			return e.Action == domain.ActionTransfer
		})).Return(nil)
		h.sql.ExpectCommit()

		enrollment, err := svc.Transfer(ctx, testActor(), 42, target.ID, "transferência interna")
		require.NoError(t, err)
		assert.Equal(t, target.ID, enrollment.ClassID)
		assert.False(t, current.Active)
		assert.Equal(t, "transferência interna", current.DisenrollReason)
	})

	t.Run("rejects the same class", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		classID := uuid.New()
		current := &domain.Enrollment{ID: uuid.New(), StudentCode: 42, ClassID: classID, Active: true}

		h.sql.ExpectBegin()
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(current, nil)
		h.sql.ExpectRollback()

		_, err := svc.Transfer(ctx, testActor(), 42, classID, "")
		assert.ErrorIs(t, err, ErrSameClass)
	})

	t.Run("requires an active enrollment", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)

		h.sql.ExpectBegin()
		h.enrollments.On("GetActiveByStudent", mock.Anything, int64(42)).Return(nil, store.ErrEnrollmentNotFound)
		h.sql.ExpectRollback()

		_, err := svc.Transfer(ctx, testActor(), 42, uuid.New(), "")
		assert.ErrorIs(t, err, domain.ErrStudentNotEnrolled)
	})
}

func TestGetActiveRoster_UsesClassOrder(t *testing.T) {
	h := newHarness(t)
	svc := newEnrollmentService(t, h)
	class := testClass(t, 30)
	class.RosterOrder = domain.RosterStudentCode

	h.classes.On("GetByID", mock.Anything, class.ID).Return(class, nil)
	h.enrollments.On("ListActiveRoster", mock.Anything, class.ID).Return([]domain.RosterEntry{
		{Student: *testStudent(30, "Carla")},
		{Student: *testStudent(10, "Zélia")},
		{Student: *testStudent(20, "Álvaro")},
	}, nil)

	roster, err := svc.GetActiveRoster(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, []int64{10, 20, 30}, []int64{roster[0].Student.Code, roster[1].Student.Code, roster[2].Student.Code})
}

func TestSetRosterPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive positions", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)

		_, err := svc.SetRosterPosition(ctx, testActor(), uuid.New(), 0)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	})

	t.Run("stores the position", func(t *testing.T) {
		h := newHarness(t)
		svc := newEnrollmentService(t, h)
		enrollment := &domain.Enrollment{ID: uuid.New(), StudentCode: 42, ClassID: uuid.New(), Active: true}

		h.sql.ExpectBegin()
		h.enrollments.On("GetByIDForUpdate", mock.Anything, enrollment.ID).Return(enrollment, nil)
		h.enrollments.On("Update", mock.Anything, enrollment).Return(nil)
		h.expectActivity()
		h.allowActivity()
		h.sql.ExpectCommit()

		got, err := svc.SetRosterPosition(ctx, testActor(), enrollment.ID, 3)
		require.NoError(t, err)
		require.NotNil(t, got.RosterPosition)
		assert.Equal(t, 3, *got.RosterPosition)
	})
}
