package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// GradingHandler serves evaluations, grades and student results.
type GradingHandler struct {
	grading GradingService
	logger  *slog.Logger
}

// NewGradingHandler creates a GradingHandler.
func NewGradingHandler(grading GradingService, logger *slog.Logger) *GradingHandler {
	if grading == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("grading service and logger cannot be nil for GradingHandler")
	}
	return &GradingHandler{
		grading: grading,
		logger:  logger.With(slog.String("component", "grading_handler")),
	}
}

// CreateEvaluation handles POST /evaluations.
func (h *GradingHandler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req EvaluationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	evaluation, err := h.grading.CreateEvaluation(r.Context(), actor, params)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, evaluation)
}

// ListEvaluations handles GET /evaluations?class_id=&subject_id=&division_id=.
func (h *GradingHandler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	scope, err := evaluationScope(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	evaluations, err := h.grading.ListEvaluations(r.Context(), scope)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(evaluations))
}

// GetEvaluation handles GET /evaluations/{id}.
func (h *GradingHandler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	evaluation, err := h.grading.GetEvaluation(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, evaluation)
}

// RecordGrade handles POST /evaluations/{id}/grades. Recording again for a
// student replaces the earlier outcome.
func (h *GradingHandler) RecordGrade(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	evaluationID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req GradeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	grade, err := h.grading.RecordGrade(r.Context(), actor, evaluationID, req.StudentCode, req.input())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("grade recorded",
		slog.String("grade_id", grade.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, grade)
}

// ListGrades handles GET /evaluations/{id}/grades.
func (h *GradingHandler) ListGrades(w http.ResponseWriter, r *http.Request) {
	evaluationID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	grades, err := h.grading.ListGrades(r.Context(), evaluationID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(grades))
}

// Average handles GET /reports/average?student_code=&class_id=&subject_id=&division_id=.
// The average is null when the student has no numeric grade in the scope.
func (h *GradingHandler) Average(w http.ResponseWriter, r *http.Request) {
	code, err := queryStudentCode(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	scope, err := evaluationScope(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	result, err := h.grading.ComputeAverage(r.Context(), code, scope)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Attendance handles GET /reports/attendance?student_code=&class_id=&subject_id=&from=&to=.
func (h *GradingHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	code, err := queryStudentCode(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	scope, err := attendanceScope(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	result, err := h.grading.ComputeAttendance(r.Context(), code, scope)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// RecordRecovery handles POST /recoveries. Recording again replaces the
// earlier outcome.
func (h *GradingHandler) RecordRecovery(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req RecoveryRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	recovery, err := h.grading.RecordRecovery(r.Context(), actor, req.params())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, recovery)
}

// GetRecovery handles GET /recoveries?class_id=&subject_id=&student_code=.
func (h *GradingHandler) GetRecovery(w http.ResponseWriter, r *http.Request) {
	code, err := queryStudentCode(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	scope, err := evaluationScope(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	recovery, err := h.grading.GetRecovery(r.Context(), scope.ClassID, scope.SubjectID, code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, recovery)
}

// StudentReport handles GET /reports/students/{code}.
func (h *GradingHandler) StudentReport(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	report, err := h.grading.StudentReport(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

func queryStudentCode(r *http.Request) (int64, error) {
	code, err := strconv.ParseInt(r.URL.Query().Get("student_code"), 10, 64)
	if err != nil || code <= 0 {
		return 0, domain.NewValidationError("student_code", "must be a positive number", domain.ErrValidation)
	}
	return code, nil
}

func evaluationScope(r *http.Request) (store.EvaluationScope, error) {
	classID, err := requiredQueryUUID(r, "class_id")
	if err != nil {
		return store.EvaluationScope{}, err
	}
	subjectID, err := requiredQueryUUID(r, "subject_id")
	if err != nil {
		return store.EvaluationScope{}, err
	}
	divisionID, err := queryUUID(r, "division_id")
	if err != nil {
		return store.EvaluationScope{}, err
	}
	return store.EvaluationScope{ClassID: classID, SubjectID: subjectID, DivisionID: divisionID}, nil
}

func attendanceScope(r *http.Request) (store.AttendanceScope, error) {
	classID, err := requiredQueryUUID(r, "class_id")
	if err != nil {
		return store.AttendanceScope{}, err
	}
	subjectID, err := requiredQueryUUID(r, "subject_id")
	if err != nil {
		return store.AttendanceScope{}, err
	}
	from, err := queryDate(r, "from")
	if err != nil {
		return store.AttendanceScope{}, err
	}
	to, err := queryDate(r, "to")
	if err != nil {
		return store.AttendanceScope{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return store.AttendanceScope{}, domain.NewValidationError("to", "must not be before from", domain.ErrOutOfRange)
	}
	return store.AttendanceScope{ClassID: classID, SubjectID: subjectID, From: from, To: to}, nil
}
