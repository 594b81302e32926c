package service

import (
	"errors"
	"fmt"
)

// ErrSameClass is returned when a transfer targets the class the student is
// already enrolled in.
var ErrSameClass = errors.New("student is already enrolled in the target class")

// ServiceError wraps an unexpected failure with the operation that hit it.
// Expected conditions (domain and store sentinels) stay matchable through
// errors.Is because Unwrap exposes the cause.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
