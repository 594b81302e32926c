package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// EnrollmentService enrolls students into classes (enturmação) and keeps
// class rosters.
//
// Every mutation runs in one transaction. The class row is locked while its
// active count is compared to the capacity, and the partial unique index on
// active enrollments decides races on the one-active-enrollment rule.
type EnrollmentService struct {
	db          *sql.DB
	students    store.StudentStore
	classes     store.ClassStore
	enrollments store.EnrollmentStore
	activity    *ActivityRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewEnrollmentService creates an EnrollmentService. It returns an error if
// any of the required dependencies are nil.
func NewEnrollmentService(
	db *sql.DB,
	stores Stores,
	activity *ActivityRecorder,
	logger *slog.Logger,
	opts ...Option,
) (*EnrollmentService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	err := requireDeps(
		dep{"stores.Students", stores.Students},
		dep{"stores.Classes", stores.Classes},
		dep{"stores.Enrollments", stores.Enrollments},
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &EnrollmentService{
		db:          db,
		students:    stores.Students,
		classes:     stores.Classes,
		enrollments: stores.Enrollments,
		activity:    activity,
		logger:      logger.With(slog.String("component", "enrollment_service")),
		now:         o.now,
	}, nil
}

// Enroll creates an active enrollment of the student in the class.
//
// It fails with domain.ErrAlreadyEnrolled when the student holds an active
// enrollment in any class, domain.ErrCapacityExceeded when the class is full
// and domain.ErrStudentArchived for permanently archived students.
func (s *EnrollmentService) Enroll(
	ctx context.Context,
	actor domain.Actor,
	studentCode int64,
	classID uuid.UUID,
) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var enrollment *domain.Enrollment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		enrollment, err = s.enrollTx(ctx, tx, actor, studentCode, classID, domain.ActionEnroll)
		return err
	})
	if err != nil {
		log.Warn("enrollment rejected",
			slog.String("error", err.Error()),
			slog.Int64("student_code", studentCode),
			slog.String("class_id", classID.String()))
		return nil, err
	}

	log.Info("student enrolled",
		slog.Int64("student_code", studentCode),
		slog.String("class_id", classID.String()),
		slog.String("enrollment_id", enrollment.ID.String()))
	return enrollment, nil
}

// enrollTx runs the enrollment checks and insert inside tx.
func (s *EnrollmentService) enrollTx(
	ctx context.Context,
	tx *sql.Tx,
	actor domain.Actor,
	studentCode int64,
	classID uuid.UUID,
	action domain.ActionKind,
) (*domain.Enrollment, error) {
	students := s.students.WithTx(tx)
	classes := s.classes.WithTx(tx)
	enrollments := s.enrollments.WithTx(tx)

	student, err := students.GetByCode(ctx, studentCode)
	if err != nil {
		return nil, err
	}
	if student.IsArchived() {
		return nil, domain.ErrStudentArchived
	}

	class, err := classes.GetByIDForUpdate(ctx, classID)
	if err != nil {
		return nil, err
	}

	if _, err := enrollments.GetActiveByStudent(ctx, studentCode); err == nil {
		return nil, domain.ErrAlreadyEnrolled
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, NewServiceError("enrollment", "enroll", "failed to check active enrollment", err)
	}

	active, err := enrollments.CountActiveByClass(ctx, classID)
	if err != nil {
		return nil, NewServiceError("enrollment", "enroll", "failed to count enrollments", err)
	}
	if !class.HasCapacity(active) {
		return nil, fmt.Errorf("%w: %s has %d of %d seats taken", domain.ErrCapacityExceeded, class.Name, active, class.Capacity)
	}

	enrollment, err := domain.NewEnrollment(studentCode, classID, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, tx, actor, action, domain.ModuleEnrollment,
		student.Name, enrollment.ID.String(), "Turma "+class.Name+" ("+class.Period+")")
	return enrollment, nil
}

// Disenroll deactivates an enrollment, keeping the row as history. It fails
// with domain.ErrNotActive when the enrollment is already inactive.
func (s *EnrollmentService) Disenroll(
	ctx context.Context,
	actor domain.Actor,
	enrollmentID uuid.UUID,
	reason string,
) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var enrollment *domain.Enrollment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		enrollment, err = s.disenrollTx(ctx, tx, actor, enrollmentID, reason, domain.ActionDisenroll)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("student disenrolled",
		slog.String("enrollment_id", enrollmentID.String()),
		slog.Int64("student_code", enrollment.StudentCode))
	return enrollment, nil
}

func (s *EnrollmentService) disenrollTx(
	ctx context.Context,
	tx *sql.Tx,
	actor domain.Actor,
	enrollmentID uuid.UUID,
	reason string,
	action domain.ActionKind,
) (*domain.Enrollment, error) {
	enrollments := s.enrollments.WithTx(tx)

	enrollment, err := enrollments.GetByIDForUpdate(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := enrollment.Disenroll(reason, actor, s.now()); err != nil {
		return nil, err
	}
	if err := enrollments.Update(ctx, enrollment); err != nil {
		return nil, NewServiceError("enrollment", "disenroll", "failed to save enrollment", err)
	}

	if action == domain.ActionDisenroll {
		s.activity.Record(ctx, tx, actor, action, domain.ModuleEnrollment,
			"Matrícula "+strconv.FormatInt(enrollment.StudentCode, 10), enrollment.ID.String(), enrollment.DisenrollReason)
	}
	return enrollment, nil
}

// Transfer moves a student from the active enrollment to another class in
// one transaction: the current enrollment is closed with reason and a new
// one is created in the target class. Nothing changes if either step fails.
func (s *EnrollmentService) Transfer(
	ctx context.Context,
	actor domain.Actor,
	studentCode int64,
	toClassID uuid.UUID,
	reason string,
) (*domain.Enrollment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var enrollment *domain.Enrollment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.enrollments.WithTx(tx).GetActiveByStudent(ctx, studentCode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrStudentNotEnrolled
			}
			return err
		}
		if current.ClassID == toClassID {
			return ErrSameClass
		}
		if _, err := s.disenrollTx(ctx, tx, actor, current.ID, reason, domain.ActionTransfer); err != nil {
			return err
		}
		enrollment, err = s.enrollTx(ctx, tx, actor, studentCode, toClassID, domain.ActionTransfer)
		return err
	})
	if err != nil {
		log.Warn("transfer rejected",
			slog.String("error", err.Error()),
			slog.Int64("student_code", studentCode),
			slog.String("to_class_id", toClassID.String()))
		return nil, err
	}

	log.Info("student transferred",
		slog.Int64("student_code", studentCode),
		slog.String("to_class_id", toClassID.String()))
	return enrollment, nil
}

// GetActiveRoster returns the actively enrolled students of a class in the
// class's roster order.
func (s *EnrollmentService) GetActiveRoster(ctx context.Context, classID uuid.UUID) ([]domain.RosterEntry, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	entries, err := s.enrollments.ListActiveRoster(ctx, classID)
	if err != nil {
		return nil, NewServiceError("enrollment", "get_active_roster", "failed to list roster", err)
	}
	domain.SortRoster(entries, class.RosterOrder)
	return entries, nil
}

// SetRosterPosition sets the position used by CUSTOM roster ordering.
func (s *EnrollmentService) SetRosterPosition(
	ctx context.Context,
	actor domain.Actor,
	enrollmentID uuid.UUID,
	position int,
) (*domain.Enrollment, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if position < 1 {
		return nil, domain.NewValidationError("position", "must be positive", domain.ErrOutOfRange)
	}

	var enrollment *domain.Enrollment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		enrollments := s.enrollments.WithTx(tx)

		var err error
		enrollment, err = enrollments.GetByIDForUpdate(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if !enrollment.Active {
			return domain.ErrNotActive
		}
		enrollment.RosterPosition = &position
		if err := enrollments.Update(ctx, enrollment); err != nil {
			return NewServiceError("enrollment", "set_roster_position", "failed to save enrollment", err)
		}

		s.activity.Record(ctx, tx, actor, domain.ActionUpdate, domain.ModuleEnrollment,
			"Matrícula "+strconv.FormatInt(enrollment.StudentCode, 10), enrollment.ID.String(),
			"Número na chamada: "+strconv.Itoa(position))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// History returns every enrollment of a student, active or not.
func (s *EnrollmentService) History(ctx context.Context, studentCode int64) ([]*domain.Enrollment, error) {
	if _, err := s.students.GetByCode(ctx, studentCode); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, studentCode)
	if err != nil {
		return nil, NewServiceError("enrollment", "history", "failed to list enrollments", err)
	}
	return enrollments, nil
}
