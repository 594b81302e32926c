package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrStudentNotFound, ErrClassNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a class with the same name in the same period).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or a check constraint rejects it.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete operation fails.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrStudentNotFound        = fmt.Errorf("%w: student", ErrNotFound)
	ErrStaffNotFound          = fmt.Errorf("%w: staff", ErrNotFound)
	ErrClassNotFound          = fmt.Errorf("%w: class", ErrNotFound)
	ErrEnrollmentNotFound     = fmt.Errorf("%w: enrollment", ErrNotFound)
	ErrSubjectNotFound        = fmt.Errorf("%w: subject", ErrNotFound)
	ErrDivisionNotFound       = fmt.Errorf("%w: period division", ErrNotFound)
	ErrConceptNotFound        = fmt.Errorf("%w: concept", ErrNotFound)
	ErrEvaluationTypeNotFound = fmt.Errorf("%w: evaluation type", ErrNotFound)
	ErrEvaluationNotFound     = fmt.Errorf("%w: evaluation", ErrNotFound)
	ErrGradeNotFound          = fmt.Errorf("%w: grade", ErrNotFound)
	ErrGradebookNotFound      = fmt.Errorf("%w: gradebook", ErrNotFound)
	ErrLessonNotFound         = fmt.Errorf("%w: lesson", ErrNotFound)
	ErrRecoveryNotFound       = fmt.Errorf("%w: special recovery", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrClassNameTaken indicates a class with the same name exists in the period.
	ErrClassNameTaken = fmt.Errorf("%w: class name in period", ErrDuplicate)

	// ErrSubjectCodeTaken indicates the allocated subject code is already used.
	ErrSubjectCodeTaken = fmt.Errorf("%w: subject code", ErrDuplicate)

	// ErrDivisionOrderTaken indicates the period already has a division with that order.
	ErrDivisionOrderTaken = fmt.Errorf("%w: division order in period", ErrDuplicate)

	// ErrConceptNameTaken indicates a concept with that name exists.
	ErrConceptNameTaken = fmt.Errorf("%w: concept name", ErrDuplicate)

	// ErrAttendanceDuplicate indicates a student appears twice in one lesson's records.
	ErrAttendanceDuplicate = fmt.Errorf("%w: attendance record", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific errors wrap ErrNotFound, so one errors.Is covers them all.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "student", "enrollment")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
