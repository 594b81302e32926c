package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/guto-escola/guto-api/internal/api/shared"
	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/service"
	"github.com/guto-escola/guto-api/internal/service/auth"
	"github.com/guto-escola/guto-api/internal/store"
)

// MapErrorToStatusCode maps domain, store and auth errors to HTTP status codes.
// Validation errors are 400, invariant and state-machine violations 409,
// missing entities 404, blocked deletes 409 and missing identity 401.
// Anything unrecognised is a 500.
func MapErrorToStatusCode(err error) int {
	var pending *domain.PendingGradesError
	switch {
	case err == nil:
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.As(err, &pending),
		errors.Is(err, domain.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrSameClass),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrConflictingGradeInput),
		errors.Is(err, domain.ErrStudentNotEnrolled),
		errors.Is(err, domain.ErrNotActive),
		errors.Is(err, domain.ErrGradebookClosed),
		errors.Is(err, domain.ErrGradebookNotClosed),
		errors.Is(err, domain.ErrStudentArchived),
		errors.Is(err, domain.ErrHasDependents),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrMissingGradeInput),
		errors.Is(err, domain.ErrGradingModeMismatch),
		errors.Is(err, domain.ErrInactiveConcept),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message that is safe to show to API clients.
// Field validation errors keep their field name and message; every other
// error gets a fixed text so that internal details never leak.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var pending *domain.PendingGradesError
	if errors.As(err, &pending) {
		return fmt.Sprintf("Gradebook has %d pending grade(s)", pending.Total())
	}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return fmt.Sprintf("Invalid %s: %s", invalid.Field, invalid.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken):
		return "Authentication required"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, domain.ErrAlreadyEnrolled):
		return "Student already has an active enrollment"
	case errors.Is(err, service.ErrSameClass):
		return "Student is already enrolled in the target class"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "Class capacity exceeded"
	case errors.Is(err, domain.ErrConflictingGradeInput):
		return "Only one of score, concept, absent and exempted may be given"
	case errors.Is(err, domain.ErrMissingGradeInput):
		return "One of score, concept, absent or exempted is required"
	case errors.Is(err, domain.ErrOutOfRange):
		return "Value out of range"
	case errors.Is(err, domain.ErrGradingModeMismatch):
		return "Grade does not match the subject grading mode"
	case errors.Is(err, domain.ErrStudentNotEnrolled):
		return "Student is not actively enrolled in the class"
	case errors.Is(err, domain.ErrInactiveConcept):
		return "Concept is not active"
	case errors.Is(err, domain.ErrNotActive):
		return "Enrollment is not active"
	case errors.Is(err, domain.ErrGradebookClosed):
		return "Gradebook is closed"
	case errors.Is(err, domain.ErrGradebookNotClosed):
		return "Gradebook is not closed"
	case errors.Is(err, domain.ErrStudentArchived):
		return "Student is archived"
	case errors.Is(err, domain.ErrHasDependents):
		return "Record is still referenced and cannot be deleted"

	case errors.Is(err, store.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, store.ErrStaffNotFound):
		return "Staff member not found"
	case errors.Is(err, store.ErrClassNotFound):
		return "Class not found"
	case errors.Is(err, store.ErrEnrollmentNotFound):
		return "Enrollment not found"
	case errors.Is(err, store.ErrSubjectNotFound):
		return "Subject not found"
	case errors.Is(err, store.ErrDivisionNotFound):
		return "Period division not found"
	case errors.Is(err, store.ErrConceptNotFound):
		return "Concept not found"
	case errors.Is(err, store.ErrEvaluationTypeNotFound):
		return "Evaluation type not found"
	case errors.Is(err, store.ErrEvaluationNotFound):
		return "Evaluation not found"
	case errors.Is(err, store.ErrGradebookNotFound):
		return "Gradebook not found"
	case errors.Is(err, store.ErrLessonNotFound):
		return "Lesson not found"
	case errors.Is(err, store.ErrRecoveryNotFound):
		return "Special recovery not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrClassNameTaken):
		return "A class with this name already exists in the period"
	case errors.Is(err, store.ErrSubjectCodeTaken):
		return "Subject code already in use"
	case errors.Is(err, store.ErrDivisionOrderTaken):
		return "A division with this order already exists in the period"
	case errors.Is(err, store.ErrConceptNameTaken):
		return "A concept with this name already exists"
	case errors.Is(err, store.ErrAttendanceDuplicate):
		return "Student listed more than once"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// FieldError is one failed field of a request body.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// SanitizeValidationError turns validator errors into a short message and
// the list of failing fields. Other errors yield "Validation error".
func SanitizeValidationError(err error) (string, []FieldError) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error", nil
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: jsonFieldName(fe), Rule: fe.Tag()})
	}
	first := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", jsonFieldName(first), getValidationTagMessage(first.Tag())), fields
}

func jsonFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid ID"
	case "datetime":
		return "invalid date"
	case "excluded_with", "excluded_with_all":
		return "conflicts with another field"
	default:
		return "validation failed"
	}
}

// PendingGradeResponse is one entry of the pending list returned when a
// gradebook cannot be closed.
type PendingGradeResponse struct {
	StudentCode    int64              `json:"student_code"`
	StudentName    string             `json:"student_name"`
	DivisionID     string             `json:"division_id"`
	DivisionName   string             `json:"division_name"`
	EvaluationID   string             `json:"evaluation_id"`
	EvaluationName string             `json:"evaluation_name"`
	Kind           domain.PendingKind `json:"kind"`
}

// PendingGradesDetails is the error payload of a refused close. Items is
// the complete list.
type PendingGradesDetails struct {
	Total int                    `json:"total"`
	Items []PendingGradeResponse `json:"items"`
}

func pendingDetails(e *domain.PendingGradesError) PendingGradesDetails {
	items := make([]PendingGradeResponse, len(e.Items))
	for i, it := range e.Items {
		items[i] = PendingGradeResponse(it)
	}
	return PendingGradesDetails{Total: e.Total(), Items: items}
}

// HandleAPIError writes the error response for err. Structured details are
// attached for pending-grade and field validation errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var opts []shared.ResponseOption
	var pending *domain.PendingGradesError
	var invalid *domain.ValidationError
	switch {
	case errors.As(err, &pending):
		opts = append(opts, shared.WithDetails(pendingDetails(pending)))
	case errors.As(err, &invalid):
		opts = append(opts, shared.WithDetails([]FieldError{{Field: invalid.Field, Rule: invalid.Message}}))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
