package api

import (
	"log/slog"
	"net/http"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/store"
)

// RegistryHandler serves the student, staff and catalog endpoints.
type RegistryHandler struct {
	registry RegistryService
	logger   *slog.Logger
}

// NewRegistryHandler creates a RegistryHandler.
func NewRegistryHandler(registry RegistryService, logger *slog.Logger) *RegistryHandler {
	if registry == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry service and logger cannot be nil for RegistryHandler")
	}
	return &RegistryHandler{
		registry: registry,
		logger:   logger.With(slog.String("component", "registry_handler")),
	}
}

// CreateStudent handles POST /students.
func (h *RegistryHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req StudentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	student := &domain.Student{ArchiveStatus: domain.ArchiveCurrent}
	if err := req.apply(student); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.CreateStudent(r.Context(), actor, student); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("student created",
		slog.Int64("student_code", student.Code))
	shared.RespondWithJSON(w, r, http.StatusCreated, student)
}

// ListStudents handles GET /students?name=&archive_status=&limit=&offset=.
func (h *RegistryHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	students, err := h.registry.ListStudents(r.Context(), store.StudentFilter{
		Name:          r.URL.Query().Get("name"),
		ArchiveStatus: domain.ArchiveStatus(r.URL.Query().Get("archive_status")),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(students))
}

// GetStudent handles GET /students/{code}.
func (h *RegistryHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	student, err := h.registry.GetStudent(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

// UpdateStudent handles PUT /students/{code}.
func (h *RegistryHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	var req StudentRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	student, err := h.registry.GetStudent(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := req.apply(student); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.UpdateStudent(r.Context(), actor, student); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

// ArchiveStudent handles POST /students/{code}/archive.
func (h *RegistryHandler) ArchiveStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	student, err := h.registry.ArchiveStudent(r.Context(), actor, code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, student)
}

// DeleteStudent handles DELETE /students/{code}. Students with any
// enrollment history cannot be deleted.
func (h *RegistryHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	if err := h.registry.DeleteStudent(r.Context(), actor, code); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateStaff handles POST /staff.
func (h *RegistryHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req StaffRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	staff := &domain.Staff{
		Status:        domain.EmploymentActive,
		WeeklyHours:   40,
		ArchiveStatus: domain.ArchiveCurrent,
	}
	if err := req.apply(staff); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.CreateStaff(r.Context(), actor, staff); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, staff)
}

// ListStaff handles GET /staff?role=&status=&limit=&offset=.
func (h *RegistryHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	staff, err := h.registry.ListStaff(r.Context(), store.StaffFilter{
		Role:   domain.StaffRole(r.URL.Query().Get("role")),
		Status: domain.EmploymentStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(staff))
}

// GetStaff handles GET /staff/{code}.
func (h *RegistryHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	staff, err := h.registry.GetStaff(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, staff)
}

// UpdateStaff handles PUT /staff/{code}.
func (h *RegistryHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}
	var req StaffRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	staff, err := h.registry.GetStaff(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := req.apply(staff); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.UpdateStaff(r.Context(), actor, staff); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, staff)
}
