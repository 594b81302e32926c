package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/platform/logger"
	"github.com/guto-escola/guto-api/internal/redact"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = time.DateOnly

// requestActor returns the authenticated actor, writing a 401 when absent.
func requestActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized)
		return domain.Actor{}, false
	}
	return actor, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// getPathCode parses a positive numeric code path parameter.
func getPathCode(r *http.Request, paramName string) (int64, error) {
	code, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
	if err != nil || code <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive number", domain.ErrInvalidID)
	}
	return code, nil
}

// pathUUID parses a UUID path parameter, writing a 400 on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	id, err := getPathUUID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}

// pathCode parses a numeric code path parameter, writing a 400 on failure.
func pathCode(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	code, err := getPathCode(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err)
		return 0, false
	}
	return code, true
}

// queryUUID parses an optional UUID query parameter. The result is nil when
// the parameter is absent.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return &id, nil
}

// requiredQueryUUID parses a mandatory UUID query parameter.
func requiredQueryUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := queryUUID(r, name)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	return *id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be a YYYY-MM-DD date", domain.ErrInvalidFormat)
	}
	return &d, nil
}

// queryInt parses an optional integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative number", domain.ErrInvalidFormat)
	}
	return n, nil
}

// queryBool reads an optional boolean query parameter, falling back to def.
func queryBool(r *http.Request, name string, def bool) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// decodeRequest decodes and validates a JSON body into req, writing a 400
// on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	if err := shared.DecodeJSON(r, req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		message, fields := SanitizeValidationError(err)
		var opts []shared.ResponseOption
		if len(fields) > 0 {
			opts = append(opts, shared.WithDetails(fields))
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err, opts...)
		return false
	}
	return true
}

// parseDate parses a required YYYY-MM-DD body field.
func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be a YYYY-MM-DD date", domain.ErrInvalidFormat)
	}
	return d, nil
}

// parseOptionalDate parses an optional YYYY-MM-DD body field.
func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
