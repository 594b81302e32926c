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

// GradebookService runs the electronic gradebook (diário) of each class and
// subject: the OPEN/CLOSED lifecycle, lessons and roll calls.
//
// Close and Reopen lock the gradebook row exclusively; lesson and
// attendance writes take a shared lock and fail with
// domain.ErrGradebookClosed while the gradebook is closed.
type GradebookService struct {
	db             *sql.DB
	stores         Stores
	activity       *ActivityRecorder
	logger         *slog.Logger
	now            func() time.Time
	pendingPreview int
}

// NewGradebookService creates a GradebookService. It returns an error if
// any of the required dependencies are nil.
func NewGradebookService(
	db *sql.DB,
	stores Stores,
	activity *ActivityRecorder,
	logger *slog.Logger,
	opts ...Option,
) (*GradebookService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if activity == nil {
		return nil, domain.NewValidationError("activity", "cannot be nil", domain.ErrValidation)
	}
	err := requireDeps(
		dep{"stores.Staff", stores.Staff},
		dep{"stores.Classes", stores.Classes},
		dep{"stores.Enrollments", stores.Enrollments},
		dep{"stores.Subjects", stores.Subjects},
		dep{"stores.Gradebooks", stores.Gradebooks},
		dep{"stores.Lessons", stores.Lessons},
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &GradebookService{
		db:             db,
		stores:         stores,
		activity:       activity,
		logger:         logger.With(slog.String("component", "gradebook_service")),
		now:            o.now,
		pendingPreview: o.pendingPreview,
	}, nil
}

// Open returns the gradebook of a class and subject for the class's period,
// creating it OPEN on first access.
func (s *GradebookService) Open(ctx context.Context, classID, subjectID uuid.UUID) (*domain.Gradebook, error) {
	class, err := s.stores.Classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.Subjects.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}
	gradebook, err := s.stores.Gradebooks.GetOrCreate(ctx, domain.NewGradebook(classID, subjectID, class.Period, s.now()))
	if err != nil {
		return nil, NewServiceError("gradebook", "open", "failed to open gradebook", err)
	}
	return gradebook, nil
}

// Get returns a gradebook by ID.
func (s *GradebookService) Get(ctx context.Context, id uuid.UUID) (*domain.Gradebook, error) {
	return s.stores.Gradebooks.GetByID(ctx, id)
}

// ListByClass returns the gradebooks of a class.
func (s *GradebookService) ListByClass(ctx context.Context, classID uuid.UUID) ([]*domain.Gradebook, error) {
	if _, err := s.stores.Classes.GetByID(ctx, classID); err != nil {
		return nil, err
	}
	gradebooks, err := s.stores.Gradebooks.ListByClass(ctx, classID)
	if err != nil {
		return nil, NewServiceError("gradebook", "list", "failed to list gradebooks", err)
	}
	return gradebooks, nil
}

// Close moves a gradebook from OPEN to CLOSED. Every actively enrolled
// student needs a grade in every evaluation of the scope's active period
// divisions; otherwise Close fails with *domain.PendingGradesError carrying
// the complete list of missing grades, and the gradebook stays open.
// Closing a closed gradebook fails with domain.ErrGradebookClosed.
func (s *GradebookService) Close(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var gradebook *domain.Gradebook
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		gradebooks := s.stores.Gradebooks.WithTx(tx)

		var err error
		if gradebook, err = gradebooks.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if gradebook.IsClosed() {
			return domain.ErrGradebookClosed
		}

		pending, err := gradebooks.ListPending(ctx, gradebook)
		if err != nil {
			return NewServiceError("gradebook", "close", "failed to list pending grades", err)
		}
		if len(pending) > 0 {
			return domain.NewPendingGradesError(pending, s.pendingPreview)
		}

		if err := gradebook.Close(actor, s.now()); err != nil {
			return err
		}
		if err := gradebooks.Update(ctx, gradebook); err != nil {
			return NewServiceError("gradebook", "close", "failed to save gradebook", err)
		}
		name, err := s.describe(ctx, tx, gradebook)
		if err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionClose, domain.ModuleGradebook, name, gradebook.ID.String(), "")
		return nil
	})
	if err != nil {
		log.Warn("gradebook close rejected",
			slog.String("error", err.Error()),
			slog.String("gradebook_id", id.String()))
		return nil, err
	}

	log.Info("gradebook closed", slog.String("gradebook_id", id.String()))
	return gradebook, nil
}

// Reopen moves a closed gradebook back to OPEN, stamping who reopened it.
// Reopening an open gradebook fails with domain.ErrGradebookNotClosed.
func (s *GradebookService) Reopen(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Gradebook, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var gradebook *domain.Gradebook
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		gradebooks := s.stores.Gradebooks.WithTx(tx)

		var err error
		if gradebook, err = gradebooks.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := gradebook.Reopen(actor, s.now()); err != nil {
			return err
		}
		if err := gradebooks.Update(ctx, gradebook); err != nil {
			return NewServiceError("gradebook", "reopen", "failed to save gradebook", err)
		}
		name, err := s.describe(ctx, tx, gradebook)
		if err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionReopen, domain.ModuleGradebook, name, gradebook.ID.String(), "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("gradebook reopened", slog.String("gradebook_id", id.String()))
	return gradebook, nil
}

// describe names a gradebook for the activity log.
func (s *GradebookService) describe(ctx context.Context, tx *sql.Tx, gradebook *domain.Gradebook) (string, error) {
	class, err := s.stores.Classes.WithTx(tx).GetByID(ctx, gradebook.ClassID)
	if err != nil {
		return "", err
	}
	subject, err := s.stores.Subjects.WithTx(tx).GetByID(ctx, gradebook.SubjectID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s - %s (%s)", class.Name, subject.Name, gradebook.Period), nil
}

// LessonParams describes a lesson to register.
type LessonParams struct {
	ClassID     uuid.UUID
	SubjectID   uuid.UUID
	Date        time.Time
	StartTime   string
	EndTime     string
	Content     string
	TeacherCode *int64
}

// RegisterLesson records a class meeting of a subject. The lesson date must
// fall in the class's period and the gradebook must be open.
func (s *GradebookService) RegisterLesson(ctx context.Context, actor domain.Actor, p LessonParams) (*domain.Lesson, error) {
	lesson, err := domain.NewLesson(p.ClassID, p.SubjectID, p.Date, p.StartTime, p.EndTime, p.Content, actor, s.now())
	if err != nil {
		return nil, err
	}
	lesson.TeacherCode = p.TeacherCode

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		class, err := s.stores.Classes.WithTx(tx).GetByID(ctx, lesson.ClassID)
		if err != nil {
			return err
		}
		if strconv.Itoa(lesson.Date.Year()) != class.Period {
			return domain.NewValidationError("date", "is outside the class period "+class.Period, domain.ErrOutOfRange)
		}
		subject, err := s.stores.Subjects.WithTx(tx).GetByID(ctx, lesson.SubjectID)
		if err != nil {
			return err
		}
		if lesson.TeacherCode != nil {
			if _, err := s.stores.Staff.WithTx(tx).GetByCode(ctx, *lesson.TeacherCode); err != nil {
				return err
			}
		}
		gradebooks := s.stores.Gradebooks.WithTx(tx)
		if _, err := lockOpenGradebook(ctx, gradebooks, class.ID, subject.ID, class.Period, s.now()); err != nil {
			return err
		}
		if err := s.stores.Lessons.WithTx(tx).CreateLesson(ctx, lesson); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleGradebook,
			fmt.Sprintf("Aula %s %s", lesson.Date.Format(time.DateOnly), lesson.StartTime), lesson.ID.String(),
			class.Name+" - "+subject.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// AttendanceEntry is the roll-call result submitted for one student.
type AttendanceEntry struct {
	StudentCode int64
	Situation   domain.AttendanceSituation
	Notes       string
}

// RecordAttendance saves the roll call of a lesson. Each student may appear
// once and must be actively enrolled in the lesson's class. Entries replace
// earlier records of the same students; the gradebook must be open.
func (s *GradebookService) RecordAttendance(
	ctx context.Context,
	actor domain.Actor,
	lessonID uuid.UUID,
	entries []AttendanceEntry,
) ([]*domain.AttendanceRecord, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.NewValidationError("records", "cannot be empty", domain.ErrValidation)
	}

	var records []*domain.AttendanceRecord
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		lessons := s.stores.Lessons.WithTx(tx)

		lesson, err := lessons.GetLesson(ctx, lessonID)
		if err != nil {
			return err
		}
		class, err := s.stores.Classes.WithTx(tx).GetByID(ctx, lesson.ClassID)
		if err != nil {
			return err
		}
		gradebooks := s.stores.Gradebooks.WithTx(tx)
		if _, err := lockOpenGradebook(ctx, gradebooks, lesson.ClassID, lesson.SubjectID, class.Period, s.now()); err != nil {
			return err
		}

		now := s.now()
		seen := make(map[int64]bool, len(entries))
		records = make([]*domain.AttendanceRecord, 0, len(entries))
		for _, e := range entries {
			if seen[e.StudentCode] {
				return fmt.Errorf("%w: student %d", store.ErrAttendanceDuplicate, e.StudentCode)
			}
			seen[e.StudentCode] = true

			record, err := domain.NewAttendanceRecord(lessonID, e.StudentCode, e.Situation, e.Notes, actor, now)
			if err != nil {
				return err
			}
			if err := requireActiveStudent(ctx, s.stores, tx, e.StudentCode, lesson.ClassID); err != nil {
				return err
			}
			records = append(records, record)
		}

		if err := lessons.SaveAttendance(ctx, lessonID, records); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionAttendance, domain.ModuleGradebook,
			"Chamada "+lesson.Date.Format(time.DateOnly)+" "+lesson.StartTime, lesson.ID.String(),
			fmt.Sprintf("%d registro(s)", len(records)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CertificateParams describes a medical certificate to register.
type CertificateParams struct {
	StudentCode int64
	ClassID     uuid.UUID
	IssuedOn    time.Time
	Days        int
	Reason      string
	Description string
}

// RegisterCertificate records a medical certificate. From then on the
// student's absences on covered days no longer count in any subject of the
// class. The certificate must start in the class period, the student must
// be actively enrolled and every gradebook of the class must be open, since
// the certificate changes their frequency.
func (s *GradebookService) RegisterCertificate(
	ctx context.Context,
	actor domain.Actor,
	p CertificateParams,
) (*domain.MedicalCertificate, error) {
	certificate, err := domain.NewMedicalCertificate(p.StudentCode, p.ClassID, p.IssuedOn, p.Days,
		p.Reason, p.Description, actor, s.now())
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		class, err := s.stores.Classes.WithTx(tx).GetByID(ctx, certificate.ClassID)
		if err != nil {
			return err
		}
		if strconv.Itoa(certificate.IssuedOn.Year()) != class.Period {
			return domain.NewValidationError("issued_on", "is outside the class period "+class.Period, domain.ErrOutOfRange)
		}
		if err := requireActiveStudent(ctx, s.stores, tx, certificate.StudentCode, class.ID); err != nil {
			return err
		}
		gradebooks, err := s.stores.Gradebooks.WithTx(tx).ListByClass(ctx, class.ID)
		if err != nil {
			return NewServiceError("gradebook", "register_certificate", "failed to list gradebooks", err)
		}
		for _, gb := range gradebooks {
			if gb.Period == class.Period && gb.IsClosed() {
				return fmt.Errorf("%w: gradebook %s", domain.ErrGradebookClosed, gb.ID)
			}
		}
		if err := s.stores.Lessons.WithTx(tx).CreateCertificate(ctx, certificate); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleGradebook,
			"Atestado "+certificate.IssuedOn.Format(time.DateOnly), certificate.ID.String(),
			fmt.Sprintf("Aluno %d, %d dia(s)", certificate.StudentCode, certificate.Days))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return certificate, nil
}

// ListCertificates returns the medical certificates of a student in a
// class, newest first.
func (s *GradebookService) ListCertificates(
	ctx context.Context,
	studentCode int64,
	classID uuid.UUID,
) ([]*domain.MedicalCertificate, error) {
	certificates, err := s.stores.Lessons.ListCertificates(ctx, studentCode, classID)
	if err != nil {
		return nil, NewServiceError("gradebook", "list_certificates", "failed to list certificates", err)
	}
	return certificates, nil
}

// StudentFrequency is the attendance of one roster student in a gradebook.
type StudentFrequency struct {
	StudentCode int64   `json:"student_code"`
	StudentName string  `json:"student_name"`
	Lectures    int     `json:"lectures"`
	Absences    int     `json:"absences"`
	Percentage  float64 `json:"percentage"`
}

// Frequency returns the attendance of every actively enrolled student over
// the gradebook's period, in the class's roster order.
func (s *GradebookService) Frequency(ctx context.Context, gradebookID uuid.UUID) ([]StudentFrequency, error) {
	gradebook, err := s.stores.Gradebooks.GetByID(ctx, gradebookID)
	if err != nil {
		return nil, err
	}
	class, err := s.stores.Classes.GetByID(ctx, gradebook.ClassID)
	if err != nil {
		return nil, err
	}
	roster, err := s.stores.Enrollments.ListActiveRoster(ctx, class.ID)
	if err != nil {
		return nil, NewServiceError("gradebook", "frequency", "failed to list roster", err)
	}
	domain.SortRoster(roster, class.RosterOrder)

	scope := store.AttendanceScope{ClassID: gradebook.ClassID, SubjectID: gradebook.SubjectID}
	if year, err := strconv.Atoi(gradebook.Period); err == nil {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		scope.From, scope.To = &from, &to
	}

	lectures, err := s.stores.Lessons.CountLessons(ctx, scope)
	if err != nil {
		return nil, NewServiceError("gradebook", "frequency", "failed to count lessons", err)
	}
	out := make([]StudentFrequency, 0, len(roster))
	for _, entry := range roster {
		absences, err := s.stores.Lessons.CountAbsences(ctx, entry.Student.Code, scope)
		if err != nil {
			return nil, NewServiceError("gradebook", "frequency", "failed to count absences", err)
		}
		out = append(out, StudentFrequency{
			StudentCode: entry.Student.Code,
			StudentName: entry.Student.DisplayName(),
			Lectures:    lectures,
			Absences:    absences,
			Percentage:  domain.AttendancePercentage(lectures, absences),
		})
	}
	return out, nil
}
