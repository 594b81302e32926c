package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/domain"
)

// CreateSubject handles POST /subjects. The subject code is allocated from
// the name.
func (h *RegistryHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req SubjectRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	subject, err := h.registry.CreateSubject(r.Context(), actor, req.Name,
		domain.GradingMode(req.GradingMode), req.WeeklyHours)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, subject)
}

// ListSubjects handles GET /subjects?active=.
func (h *RegistryHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.registry.ListSubjects(r.Context(), queryBool(r, "active", false))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(subjects))
}

// CreateDivision handles POST /periods/{period}/divisions.
func (h *RegistryHandler) CreateDivision(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req DivisionRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	division, err := req.toDomain(chi.URLParam(r, "period"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.CreateDivision(r.Context(), actor, division); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, division)
}

// ListDivisions handles GET /periods/{period}/divisions?active=.
func (h *RegistryHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	divisions, err := h.registry.ListDivisions(r.Context(), chi.URLParam(r, "period"), queryBool(r, "active", false))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(divisions))
}

// CreateConcept handles POST /concepts.
func (h *RegistryHandler) CreateConcept(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req ConceptRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	concept, err := domain.NewConcept(req.Name, req.Description, req.NumericValue)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.CreateConcept(r.Context(), actor, concept); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, concept)
}

// ListConcepts handles GET /concepts?active=.
func (h *RegistryHandler) ListConcepts(w http.ResponseWriter, r *http.Request) {
	concepts, err := h.registry.ListConcepts(r.Context(), queryBool(r, "active", false))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(concepts))
}

// CreateEvaluationType handles POST /evaluation-types.
func (h *RegistryHandler) CreateEvaluationType(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestActor(w, r)
	if !ok {
		return
	}
	var req EvaluationTypeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	evalType, err := domain.NewEvaluationType(req.Name, req.Description, req.DefaultWeight)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := h.registry.CreateEvaluationType(r.Context(), actor, evalType); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, evalType)
}

// ListEvaluationTypes handles GET /evaluation-types?active=.
func (h *RegistryHandler) ListEvaluationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.registry.ListEvaluationTypes(r.Context(), queryBool(r, "active", false))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(types))
}
