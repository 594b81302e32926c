package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/platform/logger"
)

// ClassHandler serves classes, rosters and enrollments.
type ClassHandler struct {
	registry    RegistryService
	enrollments EnrollmentService
	logger      *slog.Logger
}

// NewClassHandler creates a ClassHandler.
func NewClassHandler(registry RegistryService, enrollments EnrollmentService, logger *slog.Logger) *ClassHandler {
	if registry == nil || enrollments == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry service, enrollment service and logger cannot be nil for ClassHandler")
	}
	return &ClassHandler{
		registry:    registry,
		enrollments: enrollments,
		logger:      logger.With(slog.String("component", "class_handler")),
	}
}

// CreateClass handles POST /classes.
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req ClassRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	class, err := h.registry.CreateClass(r.Context(), actor, req.params())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, class)
}

// ListClasses handles GET /classes?period=.
func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.registry.ListClasses(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(classes))
}

// GetClass handles GET /classes/{id}. The response includes seat usage.
func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.registry.GetClassSummary(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// DeleteClass handles DELETE /classes/{id}.
func (h *ClassHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.registry.DeleteClass(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateCapacity handles PUT /classes/{id}/capacity.
func (h *ClassHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CapacityRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	class, err := h.registry.UpdateCapacity(r.Context(), actor, id, req.Capacity)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, class)
}

// Roster handles GET /classes/{id}/roster.
func (h *ClassHandler) Roster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	roster, err := h.enrollments.GetActiveRoster(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(roster))
}

// Enroll handles POST /classes/{id}/enrollments.
func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	classID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req EnrollRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	enrollment, err := h.enrollments.Enroll(r.Context(), actor, req.StudentCode, classID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("enrollment created",
		slog.String("enrollment_id", enrollment.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, enrollment)
}

// Disenroll handles POST /enrollments/{id}/disenroll.
func (h *ClassHandler) Disenroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req DisenrollRequest
	if r.ContentLength != 0 && !decodeRequest(w, r, &req) {
		return
	}
	enrollment, err := h.enrollments.Disenroll(r.Context(), actor, id, req.Reason)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, enrollment)
}

// SetPosition handles PUT /enrollments/{id}/position.
func (h *ClassHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req PositionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	enrollment, err := h.enrollments.SetRosterPosition(r.Context(), actor, id, req.Position)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, enrollment)
}

// Transfer handles POST /enrollments/transfer.
func (h *ClassHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	enrollment, err := h.enrollments.Transfer(r.Context(), actor, req.StudentCode,
		uuid.MustParse(req.ToClassID), req.Reason)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, enrollment)
}

// StudentEnrollments handles GET /students/{code}/enrollments.
func (h *ClassHandler) StudentEnrollments(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	history, err := h.enrollments.History(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(history))
}
