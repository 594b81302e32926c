package api

import (
	"log/slog"
	"net/http"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/platform/logger"
)

// GradebookHandler serves gradebooks, lessons and attendance.
type GradebookHandler struct {
	gradebooks GradebookService
	logger     *slog.Logger
}

// NewGradebookHandler creates a GradebookHandler.
func NewGradebookHandler(gradebooks GradebookService, logger *slog.Logger) *GradebookHandler {
	if gradebooks == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("gradebook service and logger cannot be nil for GradebookHandler")
	}
	return &GradebookHandler{
		gradebooks: gradebooks,
		logger:     logger.With(slog.String("component", "gradebook_handler")),
	}
}

// Lookup handles GET /gradebooks?class_id=&subject_id=, opening the
// gradebook on first access. With only class_id it lists the class's
// gradebooks.
func (h *GradebookHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	classID, err := requiredQueryUUID(r, "class_id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	subjectID, err := queryUUID(r, "subject_id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if subjectID == nil {
		gradebooks, err := h.gradebooks.ListByClass(r.Context(), classID)
		if err != nil {
			HandleAPIError(w, r, err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, listOf(gradebooks))
		return
	}

	gradebook, err := h.gradebooks.Open(r.Context(), classID, *subjectID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, gradebook)
}

// Get handles GET /gradebooks/{id}.
func (h *GradebookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	gradebook, err := h.gradebooks.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, gradebook)
}

// Close handles POST /gradebooks/{id}/close. A refusal because of missing
// grades returns 409 with the complete pending list in details.
func (h *GradebookHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	gradebook, err := h.gradebooks.Close(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("gradebook closed",
		slog.String("gradebook_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, gradebook)
}

// Reopen handles POST /gradebooks/{id}/reopen.
func (h *GradebookHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	gradebook, err := h.gradebooks.Reopen(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, gradebook)
}

// Frequency handles GET /gradebooks/{id}/frequency.
func (h *GradebookHandler) Frequency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	rows, err := h.gradebooks.Frequency(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(rows))
}

// RegisterLesson handles POST /lessons.
func (h *GradebookHandler) RegisterLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req LessonRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	lesson, err := h.gradebooks.RegisterLesson(r.Context(), actor, params)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, lesson)
}

// RegisterCertificate handles POST /certificates.
func (h *GradebookHandler) RegisterCertificate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req CertificateRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	certificate, err := h.gradebooks.RegisterCertificate(r.Context(), actor, params)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, certificate)
}

// ListCertificates handles GET /certificates?student_code=&class_id=.
func (h *GradebookHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	code, err := queryStudentCode(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	classID, err := requiredQueryUUID(r, "class_id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	certificates, err := h.gradebooks.ListCertificates(r.Context(), code, classID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(certificates))
}

// RecordAttendance handles POST /lessons/{id}/attendance.
func (h *GradebookHandler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	lessonID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req AttendanceRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	records, err := h.gradebooks.RecordAttendance(r.Context(), actor, lessonID, req.entries())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(records))
}
