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
	"golang.org/x/sync/errgroup"

	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// reportConcurrency bounds the subjects a student report computes at once.
const reportConcurrency = 4

// GradingService defines evaluations, records grades and computes averages
// and attendance percentages.
//
// Grade writes hold a shared lock on the gradebook row of their scope, so a
// concurrent close either sees the new grade or makes the write fail with
// domain.ErrGradebookClosed.
type GradingService struct {
	db       *sql.DB
	stores   Stores
	activity *ActivityRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewGradingService creates a GradingService. It returns an error if any of
// the required dependencies are nil.
func NewGradingService(
	db *sql.DB,
	stores Stores,
	activity *ActivityRecorder,
	logger *slog.Logger,
	opts ...Option,
) (*GradingService, error) {
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
		dep{"stores.Subjects", stores.Subjects},
		dep{"stores.Divisions", stores.Divisions},
		dep{"stores.Concepts", stores.Concepts},
		dep{"stores.EvaluationTypes", stores.EvaluationTypes},
		dep{"stores.Evaluations", stores.Evaluations},
		dep{"stores.Grades", stores.Grades},
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
	return &GradingService{
		db:       db,
		stores:   stores,
		activity: activity,
		logger:   logger.With(slog.String("component", "grading_service")),
		now:      o.now,
	}, nil
}

// CreateEvaluation defines an assessment for a class and subject in a
// period division. Every reference must exist and the division must belong
// to the class's period. A zero weight takes the evaluation type's default.
// Evaluations cannot be added to a closed gradebook.
func (s *GradingService) CreateEvaluation(
	ctx context.Context,
	actor domain.Actor,
	p domain.EvaluationParams,
) (*domain.Evaluation, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var evaluation *domain.Evaluation
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		class, err := s.stores.Classes.WithTx(tx).GetByID(ctx, p.ClassID)
		if err != nil {
			return err
		}
		subject, err := s.stores.Subjects.WithTx(tx).GetByID(ctx, p.SubjectID)
		if err != nil {
			return err
		}
		division, err := s.stores.Divisions.WithTx(tx).GetByID(ctx, p.DivisionID)
		if err != nil {
			return err
		}
		if division.Period != class.Period {
			return domain.NewValidationError("division_id",
				"belongs to period "+division.Period+", class is in "+class.Period, domain.ErrValidation)
		}
		evalType, err := s.stores.EvaluationTypes.WithTx(tx).GetByID(ctx, p.TypeID)
		if err != nil {
			return err
		}
		if p.Weight == 0 {
			p.Weight = evalType.DefaultWeight
		}

		gradebook, err := s.stores.Gradebooks.WithTx(tx).GetByScopeForShare(ctx, class.ID, subject.ID, class.Period)
		switch {
		case err == nil:
			if err := gradebook.EnsureOpen(); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return NewServiceError("grading", "create_evaluation", "failed to read gradebook", err)
		}

		if evaluation, err = domain.NewEvaluation(p, actor, s.now()); err != nil {
			return err
		}
		if err := s.stores.Evaluations.WithTx(tx).Create(ctx, evaluation); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionCreate, domain.ModuleEvaluation, evaluation.Name,
			evaluation.ID.String(), "Turma "+class.Name+", "+subject.Name+", "+division.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return evaluation, nil
}

// GetEvaluation returns an evaluation by ID.
func (s *GradingService) GetEvaluation(ctx context.Context, id uuid.UUID) (*domain.Evaluation, error) {
	return s.stores.Evaluations.GetByID(ctx, id)
}

// ListEvaluations lists the evaluations of a scope by application date.
func (s *GradingService) ListEvaluations(ctx context.Context, scope store.EvaluationScope) ([]*domain.Evaluation, error) {
	evaluations, err := s.stores.Evaluations.ListByScope(ctx, scope)
	if err != nil {
		return nil, NewServiceError("grading", "list_evaluations", "failed to list evaluations", err)
	}
	return evaluations, nil
}

// RecordGrade records the outcome of one student in an evaluation. Exactly
// one of score, concept, absent and exempted must be given. Recording again
// for the same student replaces the previous outcome.
//
// The student must be actively enrolled in the evaluation's class and the
// gradebook of the scope must be open; the gradebook is opened on first use.
func (s *GradingService) RecordGrade(
	ctx context.Context,
	actor domain.Actor,
	evaluationID uuid.UUID,
	studentCode int64,
	in domain.GradeInput,
) (*domain.Grade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var grade *domain.Grade
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		evaluation, err := s.stores.Evaluations.WithTx(tx).GetByID(ctx, evaluationID)
		if err != nil {
			return err
		}
		subject, err := s.stores.Subjects.WithTx(tx).GetByID(ctx, evaluation.SubjectID)
		if err != nil {
			return err
		}
		if err := in.Validate(evaluation, subject); err != nil {
			return err
		}
		if in.ConceptID != nil {
			concept, err := s.stores.Concepts.WithTx(tx).GetByID(ctx, *in.ConceptID)
			if err != nil {
				return err
			}
			if !concept.Active {
				return domain.ErrInactiveConcept
			}
		}

		division, err := s.stores.Divisions.WithTx(tx).GetByID(ctx, evaluation.DivisionID)
		if err != nil {
			return err
		}
		gradebooks := s.stores.Gradebooks.WithTx(tx)
		_, err = lockOpenGradebook(ctx, gradebooks, evaluation.ClassID, evaluation.SubjectID, division.Period, s.now())
		if err != nil {
			return err
		}

		if err := requireActiveStudent(ctx, s.stores, tx, studentCode, evaluation.ClassID); err != nil {
			return err
		}

		grade = domain.NewGrade(evaluation.ID, studentCode, in, actor, s.now())
		if err := s.stores.Grades.WithTx(tx).Upsert(ctx, grade); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionGrade, domain.ModuleEvaluation, evaluation.Name,
			evaluation.ID.String(), "Aluno "+strconv.FormatInt(studentCode, 10))
		return nil
	})
	if err != nil {
		log.Warn("grade rejected",
			slog.String("error", err.Error()),
			slog.String("evaluation_id", evaluationID.String()),
			slog.Int64("student_code", studentCode))
		return nil, err
	}

	log.Debug("grade recorded",
		slog.String("evaluation_id", evaluationID.String()),
		slog.Int64("student_code", studentCode))
	return grade, nil
}

// lockOpenGradebook opens the gradebook of the scope if needed, then takes a
// shared lock on it and fails with domain.ErrGradebookClosed unless it is open.
func lockOpenGradebook(
	ctx context.Context,
	gradebooks store.GradebookStore,
	classID, subjectID uuid.UUID,
	period string,
	now time.Time,
) (*domain.Gradebook, error) {
	if _, err := gradebooks.GetOrCreate(ctx, domain.NewGradebook(classID, subjectID, period, now)); err != nil {
		return nil, NewServiceError("gradebook", "open", "failed to open gradebook", err)
	}
	gradebook, err := gradebooks.GetByScopeForShare(ctx, classID, subjectID, period)
	if err != nil {
		return nil, err
	}
	if err := gradebook.EnsureOpen(); err != nil {
		return nil, err
	}
	return gradebook, nil
}

// requireActiveStudent fails with domain.ErrStudentNotEnrolled unless the
// student is actively enrolled in the class, and with
// domain.ErrStudentArchived when the student was archived while enrolled.
func requireActiveStudent(ctx context.Context, stores Stores, tx *sql.Tx, studentCode int64, classID uuid.UUID) error {
	enrolled, err := stores.Enrollments.WithTx(tx).IsActiveInClass(ctx, studentCode, classID)
	if err != nil {
		return NewServiceError("enrollment", "check_active", "failed to check enrollment", err)
	}
	if !enrolled {
		return fmt.Errorf("%w: student %d", domain.ErrStudentNotEnrolled, studentCode)
	}
	student, err := stores.Students.WithTx(tx).GetByCode(ctx, studentCode)
	if err != nil {
		return err
	}
	if student.IsArchived() {
		return fmt.Errorf("%w: student %d", domain.ErrStudentArchived, studentCode)
	}
	return nil
}

// RecoveryParams identifies the special recovery of a student in a class
// and subject.
type RecoveryParams struct {
	ClassID     uuid.UUID
	SubjectID   uuid.UUID
	StudentCode int64
	Input       domain.RecoveryInput
}

// RecordRecovery records the special recovery of a student: either a score
// on the 0..10 scale or the student's refusal. Only score-graded subjects
// have a recovery. The student's weighted average over the whole period is
// kept with the first record, and recording again replaces the outcome.
// Like grades, recoveries need an open gradebook and an actively enrolled
// student.
func (s *GradingService) RecordRecovery(ctx context.Context, actor domain.Actor, p RecoveryParams) (*domain.Recovery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := p.Input.Validate(); err != nil {
		return nil, err
	}

	var recovery *domain.Recovery
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		class, err := s.stores.Classes.WithTx(tx).GetByID(ctx, p.ClassID)
		if err != nil {
			return err
		}
		subject, err := s.stores.Subjects.WithTx(tx).GetByID(ctx, p.SubjectID)
		if err != nil {
			return err
		}
		if subject.ConceptGraded() {
			return fmt.Errorf("%w: subject %s is graded by concept", domain.ErrGradingModeMismatch, subject.Code)
		}
		gradebooks := s.stores.Gradebooks.WithTx(tx)
		if _, err := lockOpenGradebook(ctx, gradebooks, class.ID, subject.ID, class.Period, s.now()); err != nil {
			return err
		}
		if err := requireActiveStudent(ctx, s.stores, tx, p.StudentCode, class.ID); err != nil {
			return err
		}

		grades := s.stores.Grades.WithTx(tx)
		scores, err := grades.ListScores(ctx, p.StudentCode, store.EvaluationScope{ClassID: class.ID, SubjectID: subject.ID})
		if err != nil {
			return NewServiceError("grading", "record_recovery", "failed to list scores", err)
		}
		recovery = domain.NewRecovery(class.ID, subject.ID, p.StudentCode, domain.WeightedAverage(scores),
			p.Input, actor, s.now())
		if err := grades.UpsertRecovery(ctx, recovery); err != nil {
			return err
		}
		s.activity.Record(ctx, tx, actor, domain.ActionGrade, domain.ModuleEvaluation,
			"Recuperação especial - "+subject.Name, recovery.ID.String(),
			"Aluno "+strconv.FormatInt(p.StudentCode, 10))
		return nil
	})
	if err != nil {
		log.Warn("special recovery rejected",
			slog.String("error", err.Error()),
			slog.String("class_id", p.ClassID.String()),
			slog.Int64("student_code", p.StudentCode))
		return nil, err
	}
	return recovery, nil
}

// GetRecovery returns the special recovery of a student in a class and
// subject, or store.ErrRecoveryNotFound.
func (s *GradingService) GetRecovery(ctx context.Context, classID, subjectID uuid.UUID, studentCode int64) (*domain.Recovery, error) {
	return s.stores.Grades.GetRecovery(ctx, classID, subjectID, studentCode)
}

// ListGrades returns the grades recorded for an evaluation.
func (s *GradingService) ListGrades(ctx context.Context, evaluationID uuid.UUID) ([]*domain.Grade, error) {
	if _, err := s.stores.Evaluations.GetByID(ctx, evaluationID); err != nil {
		return nil, err
	}
	grades, err := s.stores.Grades.ListByEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, NewServiceError("grading", "list_grades", "failed to list grades", err)
	}
	return grades, nil
}

// AverageResult holds the averages of a student's numeric grades in a scope.
// Both averages are nil when the scope has no numeric grade.
type AverageResult struct {
	Average         *float64 `json:"average"`
	WeightedAverage *float64 `json:"weighted_average"`
	Count           int      `json:"count"`
}

// ComputeAverage averages the numeric grades of a student within a class
// and subject, optionally restricted to a period division. Average is the
// plain mean of the scores; WeightedAverage scales each score to 0..10 and
// weighs it by its evaluation.
func (s *GradingService) ComputeAverage(
	ctx context.Context,
	studentCode int64,
	scope store.EvaluationScope,
) (AverageResult, error) {
	items, err := s.stores.Grades.ListScores(ctx, studentCode, scope)
	if err != nil {
		return AverageResult{}, NewServiceError("grading", "compute_average", "failed to list scores", err)
	}
	scores := make([]float64, len(items))
	for i, it := range items {
		scores[i] = it.Score
	}
	return AverageResult{
		Average:         domain.Average(scores),
		WeightedAverage: domain.WeightedAverage(items),
		Count:           len(items),
	}, nil
}

// AttendanceResult is the frequency of a student in a scope.
type AttendanceResult struct {
	Lectures   int     `json:"lectures"`
	Absences   int     `json:"absences"`
	Percentage float64 `json:"percentage"`
}

// ComputeAttendance counts the lessons with attendance taken in the scope
// and the student's unjustified absences among them. A scope without
// lectures yields 0 percent.
func (s *GradingService) ComputeAttendance(
	ctx context.Context,
	studentCode int64,
	scope store.AttendanceScope,
) (AttendanceResult, error) {
	lectures, err := s.stores.Lessons.CountLessons(ctx, scope)
	if err != nil {
		return AttendanceResult{}, NewServiceError("grading", "compute_attendance", "failed to count lessons", err)
	}
	absences, err := s.stores.Lessons.CountAbsences(ctx, studentCode, scope)
	if err != nil {
		return AttendanceResult{}, NewServiceError("grading", "compute_attendance", "failed to count absences", err)
	}
	return AttendanceResult{
		Lectures:   lectures,
		Absences:   absences,
		Percentage: domain.AttendancePercentage(lectures, absences),
	}, nil
}

// DivisionReport is a student's result in one period division.
type DivisionReport struct {
	DivisionID uuid.UUID        `json:"division_id"`
	Name       string           `json:"name"`
	Order      int              `json:"order"`
	Average    AverageResult    `json:"average"`
	Attendance AttendanceResult `json:"attendance"`
}

// SubjectReport is a student's result in one subject across the period.
type SubjectReport struct {
	SubjectID       uuid.UUID              `json:"subject_id"`
	SubjectName     string                 `json:"subject_name"`
	GradebookStatus domain.GradebookStatus `json:"gradebook_status"`
	Divisions       []DivisionReport       `json:"divisions"`
	Average         AverageResult          `json:"average"`
	Recovery        *domain.Recovery       `json:"recovery,omitempty"`
	FinalAverage    *float64               `json:"final_average"`
	Attendance      AttendanceResult       `json:"attendance"`
}

// StudentReport is the report card of a student in the current class.
type StudentReport struct {
	Student  *domain.Student `json:"student"`
	Class    *domain.Class   `json:"class"`
	Subjects []SubjectReport `json:"subjects"`
}

// StudentReport builds the report card of a student's active enrollment:
// for every subject with a gradebook in the class, the averages and
// frequency per active period division and over the whole period, plus the
// special recovery and the final average it yields. It fails
// with domain.ErrStudentNotEnrolled when the student has no active
// enrollment.
func (s *GradingService) StudentReport(ctx context.Context, studentCode int64) (*StudentReport, error) {
	student, err := s.stores.Students.GetByCode(ctx, studentCode)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.stores.Enrollments.GetActiveByStudent(ctx, studentCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrStudentNotEnrolled
		}
		return nil, err
	}
	class, err := s.stores.Classes.GetByID(ctx, enrollment.ClassID)
	if err != nil {
		return nil, err
	}
	divisions, err := s.stores.Divisions.ListByPeriod(ctx, class.Period, true)
	if err != nil {
		return nil, NewServiceError("grading", "student_report", "failed to list divisions", err)
	}
	gradebooks, err := s.stores.Gradebooks.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, NewServiceError("grading", "student_report", "failed to list gradebooks", err)
	}

	report := &StudentReport{
		Student:  student,
		Class:    class,
		Subjects: make([]SubjectReport, len(gradebooks)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i, gb := range gradebooks {
		g.Go(func() error {
			subject, err := s.subjectReport(gctx, studentCode, gb, divisions)
			if err != nil {
				return err
			}
			report.Subjects[i] = subject
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *GradingService) subjectReport(
	ctx context.Context,
	studentCode int64,
	gradebook *domain.Gradebook,
	divisions []*domain.PeriodDivision,
) (SubjectReport, error) {
	subject, err := s.stores.Subjects.GetByID(ctx, gradebook.SubjectID)
	if err != nil {
		return SubjectReport{}, err
	}
	out := SubjectReport{
		SubjectID:       subject.ID,
		SubjectName:     subject.Name,
		GradebookStatus: gradebook.Status,
		Divisions:       make([]DivisionReport, 0, len(divisions)),
	}

	for _, d := range divisions {
		divisionID := d.ID
		avg, err := s.ComputeAverage(ctx, studentCode, store.EvaluationScope{
			ClassID:    gradebook.ClassID,
			SubjectID:  gradebook.SubjectID,
			DivisionID: &divisionID,
		})
		if err != nil {
			return SubjectReport{}, err
		}
		from, to := d.StartDate, d.EndDate
		freq, err := s.ComputeAttendance(ctx, studentCode, store.AttendanceScope{
			ClassID:   gradebook.ClassID,
			SubjectID: gradebook.SubjectID,
			From:      &from,
			To:        &to,
		})
		if err != nil {
			return SubjectReport{}, err
		}
		out.Divisions = append(out.Divisions, DivisionReport{
			DivisionID: d.ID,
			Name:       d.Name,
			Order:      d.Order,
			Average:    avg,
			Attendance: freq,
		})
	}

	if out.Average, err = s.ComputeAverage(ctx, studentCode, store.EvaluationScope{
		ClassID:   gradebook.ClassID,
		SubjectID: gradebook.SubjectID,
	}); err != nil {
		return SubjectReport{}, err
	}
	recovery, err := s.stores.Grades.GetRecovery(ctx, gradebook.ClassID, gradebook.SubjectID, studentCode)
	switch {
	case err == nil:
		out.Recovery = recovery
	case !errors.Is(err, store.ErrRecoveryNotFound):
		return SubjectReport{}, NewServiceError("grading", "student_report", "failed to get special recovery", err)
	}
	out.FinalAverage = domain.FinalAverage(out.Average.WeightedAverage, out.Recovery)
	if out.Attendance, err = s.ComputeAttendance(ctx, studentCode, store.AttendanceScope{
		ClassID:   gradebook.ClassID,
		SubjectID: gradebook.SubjectID,
	}); err != nil {
		return SubjectReport{}, err
	}
	return out, nil
}
