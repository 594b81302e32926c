package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// RegistryService manages the registries behind enrollment and grading:
// students, staff, classes, subjects, period divisions, concepts and
// evaluation types. Deletes are refused with domain.ErrHasDependents while
// other records still point at the entity.
type RegistryService struct {
	db              *sql.DB
	stores          Stores
	activity        *ActivityRecorder
	logger          *slog.Logger
	now             func() time.Time
	defaultCapacity int
}

// NewRegistryService creates a RegistryService. It returns an error if any
// of the required dependencies are nil.
func NewRegistryService(
	db *sql.DB,
	stores Stores,
	activity *ActivityRecorder,
	logger *slog.Logger,
	opts ...Option,
) (*RegistryService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	err := requireDeps(
		dep{"stores.Students", stores.Students},
		dep{"stores.Staff", stores.Staff},
		dep{"stores.Classes", stores.Classes},
		dep{"stores.Enrollments", stores.Enrollments},
		dep{"stores.Subjects", stores.Subjects},
		dep{"stores.Divisions", stores.Divisions},
		dep{"stores.Concepts", stores.Concepts},
		dep{"stores.EvaluationTypes", stores.EvaluationTypes},
		dep{"stores.Evaluations", stores.Evaluations},
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &RegistryService{
		db:              db,
		stores:          stores,
		activity:        activity,
		logger:          logger.With(slog.String("component", "registry_service")),
		now:             o.now,
		defaultCapacity: o.defaultCapacity,
	}, nil
}

// inTx runs fn in a transaction after checking the actor.
func (s *RegistryService) inTx(ctx context.Context, actor domain.Actor, fn store.TxFn) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	return store.RunInTransaction(ctx, s.db, fn)
}

// Students

// CreateStudent registers a student. The store assigns student.Code.
func (s *RegistryService) CreateStudent(ctx context.Context, actor domain.Actor, student *domain.Student) error {
	if err := student.Validate(); err != nil {
		return err
	}
	err := s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stores.Students.WithTx(tx).Create(ctx, student); err != nil {
			return NewServiceError("registry", "create_student", "failed to save student", err)
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleStudents,
			student.Name, strconv.FormatInt(student.Code, 10), "")
		return nil
	})
	if err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("student registered", slog.Int64("student_code", student.Code))
	return nil
}

// GetStudent returns a student by code.
func (s *RegistryService) GetStudent(ctx context.Context, code int64) (*domain.Student, error) {
	return s.stores.Students.GetByCode(ctx, code)
}

// ListStudents lists students matching filter.
func (s *RegistryService) ListStudents(ctx context.Context, filter store.StudentFilter) ([]*domain.Student, error) {
	students, err := s.stores.Students.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("registry", "list_students", "failed to list students", err)
	}
	return students, nil
}

// UpdateStudent saves the editable fields of student. The archive status
// only changes through ArchiveStudent.
func (s *RegistryService) UpdateStudent(ctx context.Context, actor domain.Actor, student *domain.Student) error {
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		students := s.stores.Students.WithTx(tx)

		current, err := students.GetByCode(ctx, student.Code)
		if err != nil {
			return err
		}
		student.ArchiveStatus = current.ArchiveStatus
		student.CreatedAt = current.CreatedAt
		student.UpdatedAt = s.now()
		if err := student.Validate(); err != nil {
			return err
		}
		if err := students.Update(ctx, student); err != nil {
			return NewServiceError("registry", "update_student", "failed to save student", err)
		}
		s.activity.Record(ctx, tx, actor, domain.ActionUpdate, domain.ModuleStudents,
			student.Name, strconv.FormatInt(student.Code, 10), "")
		return nil
	})
}

// ArchiveStudent moves a student to the permanent archive. The transition is
// one-way; archiving twice fails with domain.ErrStudentArchived.
func (s *RegistryService) ArchiveStudent(ctx context.Context, actor domain.Actor, code int64) (*domain.Student, error) {
	var student *domain.Student
	err := s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		students := s.stores.Students.WithTx(tx)

		var err error
		if student, err = students.GetByCode(ctx, code); err != nil {
			return err
		}
		if err := student.Archive(s.now()); err != nil {
			return err
		}
		if err := students.Update(ctx, student); err != nil {
			return NewServiceError("registry", "archive_student", "failed to save student", err)
		}
		s.activity.Record(ctx, tx, actor, domain.ActionArchive, domain.ModuleStudents,
			student.Name, strconv.FormatInt(code, 10), "Arquivo permanente")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student who never had an enrollment.
func (s *RegistryService) DeleteStudent(ctx context.Context, actor domain.Actor, code int64) error {
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		students := s.stores.Students.WithTx(tx)

		student, err := students.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		n, err := s.stores.Enrollments.WithTx(tx).CountByStudent(ctx, code)
		if err != nil {
			return NewServiceError("registry", "delete_student", "failed to count enrollments", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: student %d has %d enrollment(s)", domain.ErrHasDependents, code, n)
		}
		if err := students.Delete(ctx, code); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionDelete, domain.ModuleStudents,
			student.Name, strconv.FormatInt(code, 10), "")
		return nil
	})
}

// Staff

// CreateStaff registers an employee. The store assigns staff.Code.
func (s *RegistryService) CreateStaff(ctx context.Context, actor domain.Actor, staff *domain.Staff) error {
	if err := staff.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stores.Staff.WithTx(tx).Create(ctx, staff); err != nil {
			return NewServiceError("registry", "create_staff", "failed to save staff", err)
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleStaff,
			staff.Name, strconv.FormatInt(staff.Code, 10), string(staff.Role))
		return nil
	})
}

// GetStaff returns an employee by code.
func (s *RegistryService) GetStaff(ctx context.Context, code int64) (*domain.Staff, error) {
	return s.stores.Staff.GetByCode(ctx, code)
}

// ListStaff lists employees matching filter.
func (s *RegistryService) ListStaff(ctx context.Context, filter store.StaffFilter) ([]*domain.Staff, error) {
	staff, err := s.stores.Staff.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("registry", "list_staff", "failed to list staff", err)
	}
	return staff, nil
}

// UpdateStaff saves an employee record.
func (s *RegistryService) UpdateStaff(ctx context.Context, actor domain.Actor, staff *domain.Staff) error {
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		staffStore := s.stores.Staff.WithTx(tx)

		current, err := staffStore.GetByCode(ctx, staff.Code)
		if err != nil {
			return err
		}
		staff.CreatedAt = current.CreatedAt
		staff.UpdatedAt = s.now()
		if err := staff.Validate(); err != nil {
			return err
		}
		if err := staffStore.Update(ctx, staff); err != nil {
			return NewServiceError("registry", "update_staff", "failed to save staff", err)
		}
		s.activity.Record(ctx, tx, actor, domain.ActionUpdate, domain.ModuleStaff,
			staff.Name, strconv.FormatInt(staff.Code, 10), "")
		return nil
	})
}

// Classes

// ClassParams describes a class to create. A zero Capacity uses the
// configured default; an empty RosterOrder means alphabetic.
type ClassParams struct {
	Name                string
	Period              string
	EducationType       domain.EducationType
	GradeLevel          domain.GradeLevel
	Shift               domain.Shift
	Capacity            int
	RosterOrder         domain.RosterOrder
	HomeroomTeacherCode *int64
}

// CreateClass creates a class. Names are unique within a period; a clash
// fails with store.ErrClassNameTaken.
func (s *RegistryService) CreateClass(ctx context.Context, actor domain.Actor, p ClassParams) (*domain.Class, error) {
	class, err := domain.NewClass(p.Name, p.Period, p.EducationType, p.GradeLevel, p.Shift, actor.UserID)
	if err != nil {
		return nil, err
	}
	class.Capacity = s.defaultCapacity
	if p.Capacity != 0 {
		class.Capacity = p.Capacity
	}
	if p.RosterOrder != "" {
		class.RosterOrder = p.RosterOrder
	}
	class.HomeroomTeacherCode = p.HomeroomTeacherCode
	if err := class.Validate(); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		if class.HomeroomTeacherCode != nil {
			if _, err := s.stores.Staff.WithTx(tx).GetByCode(ctx, *class.HomeroomTeacherCode); err != nil {
				return err
			}
		}
		if err := s.stores.Classes.WithTx(tx).Create(ctx, class); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleClasses,
			class.Name, class.ID.String(), "Período "+class.Period)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// GetClass returns a class by ID.
func (s *RegistryService) GetClass(ctx context.Context, id uuid.UUID) (*domain.Class, error) {
	return s.stores.Classes.GetByID(ctx, id)
}

// ClassSummary is a class with its current seat usage.
type ClassSummary struct {
	*domain.Class
	ActiveEnrollments int `json:"active_enrollments"`
	AvailableSeats    int `json:"available_seats"`
	Occupancy         int `json:"occupancy"`
}

// GetClassSummary returns a class with its seat usage.
func (s *RegistryService) GetClassSummary(ctx context.Context, id uuid.UUID) (*ClassSummary, error) {
	class, err := s.stores.Classes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active, err := s.stores.Enrollments.CountActiveByClass(ctx, id)
	if err != nil {
		return nil, NewServiceError("registry", "get_class", "failed to count enrollments", err)
	}
	return &ClassSummary{
		Class:             class,
		ActiveEnrollments: active,
		AvailableSeats:    class.AvailableSeats(active),
		Occupancy:         class.Occupancy(active),
	}, nil
}

// ListClasses lists the classes of a period, or of every period when empty.
func (s *RegistryService) ListClasses(ctx context.Context, period string) ([]*domain.Class, error) {
	classes, err := s.stores.Classes.List(ctx, period)
	if err != nil {
		return nil, NewServiceError("registry", "list_classes", "failed to list classes", err)
	}
	return classes, nil
}

// UpdateCapacity changes the number of seats of a class. The new capacity
// may not fall below the number of active enrollments.
func (s *RegistryService) UpdateCapacity(
	ctx context.Context,
	actor domain.Actor,
	classID uuid.UUID,
	capacity int,
) (*domain.Class, error) {
	var class *domain.Class
	err := s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		classes := s.stores.Classes.WithTx(tx)

		var err error
		if class, err = classes.GetByIDForUpdate(ctx, classID); err != nil {
			return err
		}
		active, err := s.stores.Enrollments.WithTx(tx).CountActiveByClass(ctx, classID)
		if err != nil {
			return NewServiceError("registry", "update_capacity", "failed to count enrollments", err)
		}
		if capacity < active {
			return domain.NewValidationError("capacity",
				fmt.Sprintf("cannot be below the %d active enrollment(s)", active), domain.ErrOutOfRange)
		}
		previous := class.Capacity
		class.Capacity = capacity
		class.UpdatedAt = s.now()
		if err := class.Validate(); err != nil {
			return err
		}
		if err := classes.Update(ctx, class); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionUpdate, domain.ModuleClasses, class.Name, class.ID.String(),
			fmt.Sprintf("Capacidade %d -> %d", previous, capacity))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return class, nil
}

// DeleteClass removes a class with no enrollments and no evaluations.
func (s *RegistryService) DeleteClass(ctx context.Context, actor domain.Actor, classID uuid.UUID) error {
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		classes := s.stores.Classes.WithTx(tx)

		class, err := classes.GetByIDForUpdate(ctx, classID)
		if err != nil {
			return err
		}
		enrollments, err := s.stores.Enrollments.WithTx(tx).CountByClass(ctx, classID)
		if err != nil {
			return NewServiceError("registry", "delete_class", "failed to count enrollments", err)
		}
		evaluations, err := s.stores.Evaluations.WithTx(tx).CountByClass(ctx, classID)
		if err != nil {
			return NewServiceError("registry", "delete_class", "failed to count evaluations", err)
		}
		if enrollments > 0 || evaluations > 0 {
			return fmt.Errorf("%w: class %s has %d enrollment(s) and %d evaluation(s)",
				domain.ErrHasDependents, class.Name, enrollments, evaluations)
		}
		if err := classes.Delete(ctx, classID); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionDelete, domain.ModuleClasses, class.Name, class.ID.String(), "")
		return nil
	})
}

// Catalogs

// CreateSubject creates a subject and allocates its code. Allocation holds
// a transaction-scoped lock, so concurrent creations never pick the same
// code; UNIQUE(code) backs it up.
func (s *RegistryService) CreateSubject(
	ctx context.Context,
	actor domain.Actor,
	name string,
	mode domain.GradingMode,
	weeklyHours int,
) (*domain.Subject, error) {
	subject, err := domain.NewSubject(name, mode, weeklyHours)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		subjects := s.stores.Subjects.WithTx(tx)

		if err := subjects.LockCodeAllocation(ctx); err != nil {
			return NewServiceError("registry", "create_subject", "failed to lock code allocation", err)
		}
		base := domain.SubjectCodeBase(subject.Name)
		taken, err := subjects.ListCodesWithPrefix(ctx, base)
		if err != nil {
			return NewServiceError("registry", "create_subject", "failed to list subject codes", err)
		}
		subject.Code = domain.NextSubjectCode(base, taken)
		if err := subjects.Create(ctx, subject); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleSubjects,
			subject.Name, subject.ID.String(), "Código "+subject.Code)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("subject created",
		slog.String("subject_id", subject.ID.String()),
		slog.String("code", subject.Code))
	return subject, nil
}

// ListSubjects lists subjects by name.
func (s *RegistryService) ListSubjects(ctx context.Context, activeOnly bool) ([]*domain.Subject, error) {
	return s.stores.Subjects.List(ctx, activeOnly)
}

// CreateDivision adds a division to an academic period. Orders are unique
// per period; a clash fails with store.ErrDivisionOrderTaken.
func (s *RegistryService) CreateDivision(
	ctx context.Context,
	actor domain.Actor,
	division *domain.PeriodDivision,
) error {
	if err := division.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stores.Divisions.WithTx(tx).Create(ctx, division); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleEvaluation,
			division.Name, division.ID.String(), "Período "+division.Period)
		return nil
	})
}

// ListDivisions lists the divisions of a period in order.
func (s *RegistryService) ListDivisions(ctx context.Context, period string, activeOnly bool) ([]*domain.PeriodDivision, error) {
	return s.stores.Divisions.ListByPeriod(ctx, period, activeOnly)
}

// CreateConcept adds a qualitative grade level.
func (s *RegistryService) CreateConcept(ctx context.Context, actor domain.Actor, concept *domain.Concept) error {
	if err := concept.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stores.Concepts.WithTx(tx).Create(ctx, concept); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleEvaluation,
			"Conceito "+concept.Name, concept.ID.String(), "")
		return nil
	})
}

// ListConcepts lists concepts from the highest value down.
func (s *RegistryService) ListConcepts(ctx context.Context, activeOnly bool) ([]*domain.Concept, error) {
	return s.stores.Concepts.List(ctx, activeOnly)
}

// CreateEvaluationType adds an evaluation type.
func (s *RegistryService) CreateEvaluationType(ctx context.Context, actor domain.Actor, t *domain.EvaluationType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.stores.EvaluationTypes.WithTx(tx).Create(ctx, t); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleEvaluation, t.Name, t.ID.String(), "")
		return nil
	})
}

// ListEvaluationTypes lists evaluation types by name.
func (s *RegistryService) ListEvaluationTypes(ctx context.Context, activeOnly bool) ([]*domain.EvaluationType, error) {
	return s.stores.EvaluationTypes.List(ctx, activeOnly)
}
