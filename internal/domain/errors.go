package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when no acting user is available for an operation.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Invariant violations. The operation is aborted and nothing is written.
var (
	// ErrAlreadyEnrolled is returned when a student already holds an active
	// enrollment in any class.
	ErrAlreadyEnrolled = errors.New("student already has an active enrollment")

	// ErrCapacityExceeded is returned when a class has no free seats left.
	ErrCapacityExceeded = errors.New("class capacity exceeded")

	// ErrConflictingGradeInput is returned when more than one of score,
	// concept, absent and exempted is supplied for a grade.
	ErrConflictingGradeInput = errors.New("conflicting grade input")

	// ErrMissingGradeInput is returned when none of score, concept, absent
	// and exempted is supplied for a grade.
	ErrMissingGradeInput = errors.New("missing grade input")

	// ErrOutOfRange is returned when a score is negative or above the
	// evaluation maximum.
	ErrOutOfRange = errors.New("value out of range")

	// ErrGradingModeMismatch is returned when a numeric score is given for a
	// concept-graded subject or a concept for a score-graded subject.
	ErrGradingModeMismatch = errors.New("grading mode mismatch")

	// ErrStudentNotEnrolled is returned when a grade or attendance record
	// targets a student with no active enrollment in the class.
	ErrStudentNotEnrolled = errors.New("student is not actively enrolled in the class")

	// ErrInactiveConcept is returned when a disabled concept is used for grading.
	ErrInactiveConcept = errors.New("concept is not active")
)

// State-machine errors.
var (
	// ErrNotActive is returned when disenrolling an enrollment that is already inactive.
	ErrNotActive = errors.New("enrollment is not active")

	// ErrGradebookClosed is returned for any grade or attendance mutation
	// against a closed gradebook, and when closing an already closed one.
	ErrGradebookClosed = errors.New("gradebook is closed")

	// ErrGradebookNotClosed is returned when reopening a gradebook that is open.
	ErrGradebookNotClosed = errors.New("gradebook is not closed")

	// ErrStudentArchived is returned when a permanently archived student is
	// enrolled or archived again.
	ErrStudentArchived = errors.New("student is permanently archived")
)

// ErrHasDependents is returned when deleting an entity that other records
// still reference. The check runs before any delete is issued.
var ErrHasDependents = errors.New("entity has dependent records")

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. err is the
// sentinel the caller can match with errors.Is; it defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PendingItem is one missing grade that blocks closing a gradebook.
type PendingItem struct {
	StudentCode    int64
	StudentName    string
	DivisionID     string
	DivisionName   string
	EvaluationID   string
	EvaluationName string
	Kind           PendingKind
}

// PendingKind tells what is missing for a PendingItem.
type PendingKind string

// Pending kinds.
const (
	PendingGradeMissing   PendingKind = "NOTA_NAO_INFORMADA"
	PendingConceptMissing PendingKind = "CONCEITO_NAO_INFORMADO"
)

// DefaultPendingPreview is how many pending items Error() lists before summarising.
const DefaultPendingPreview = 5

// PendingGradesError is returned when a gradebook cannot be closed because
// grades are missing. Items always holds the complete list; only the text
// produced by Error is shortened.
type PendingGradesError struct {
	Items   []PendingItem
	Preview int
}

// NewPendingGradesError builds a PendingGradesError. A preview of zero or
// less uses DefaultPendingPreview.
func NewPendingGradesError(items []PendingItem, preview int) *PendingGradesError {
	if preview <= 0 {
		preview = DefaultPendingPreview
	}
	return &PendingGradesError{Items: items, Preview: preview}
}

// Total returns the number of missing grades.
func (e *PendingGradesError) Total() int {
	return len(e.Items)
}

// Error implements the error interface for PendingGradesError.
func (e *PendingGradesError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d pending grade(s)", len(e.Items))

	shown := e.Items
	if len(shown) > e.Preview {
		shown = shown[:e.Preview]
	}
	for i, item := range shown {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (%s, %s)", item.StudentName, item.DivisionName, item.EvaluationName)
	}
	if rest := len(e.Items) - len(shown); rest > 0 {
		fmt.Fprintf(&b, " and %d more", rest)
	}
	return b.String()
}
