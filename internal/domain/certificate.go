package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxCertificateDays bounds the leave a single medical certificate grants.
const MaxCertificateDays = 180

// MedicalCertificate excuses a student from the lessons of a class for Days
// consecutive days starting on IssuedOn. Absences recorded on covered days
// do not count against the student's frequency.
type MedicalCertificate struct {
	ID          uuid.UUID `json:"id"`
	StudentCode int64     `json:"student_code"`
	ClassID     uuid.UUID `json:"class_id"`
	IssuedOn    time.Time `json:"issued_on"`
	Days        int       `json:"days"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMedicalCertificate creates a certificate stamped with the acting user.
func NewMedicalCertificate(
	studentCode int64,
	classID uuid.UUID,
	issuedOn time.Time,
	days int,
	reason, description string,
	actor Actor,
	now time.Time,
) (*MedicalCertificate, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	c := &MedicalCertificate{
		ID:          uuid.New(),
		StudentCode: studentCode,
		ClassID:     classID,
		IssuedOn:    truncateDay(issuedOn),
		Days:        days,
		Reason:      strings.TrimSpace(reason),
		Description: strings.TrimSpace(description),
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the certificate fields.
func (c *MedicalCertificate) Validate() error {
	if c.ID == uuid.Nil || c.ClassID == uuid.Nil {
		return NewValidationError("certificate", "requires id and class_id", ErrInvalidID)
	}
	if c.StudentCode <= 0 {
		return NewValidationError("student_code", "is required", ErrInvalidID)
	}
	if c.IssuedOn.IsZero() {
		return NewValidationError("issued_on", "is required", ErrValidation)
	}
	if c.Days < 1 || c.Days > MaxCertificateDays {
		return NewValidationError("days", "must be between 1 and 180", ErrOutOfRange)
	}
	if c.Reason == "" {
		return NewValidationError("reason", "is required", ErrValidation)
	}
	if len(c.Reason) > 255 {
		return NewValidationError("reason", "is too long", ErrValidation)
	}
	return nil
}

// LastDay is the last day the certificate covers.
func (c *MedicalCertificate) LastDay() time.Time {
	return c.IssuedOn.AddDate(0, 0, c.Days-1)
}

// Covers reports whether day falls within the certificate.
func (c *MedicalCertificate) Covers(day time.Time) bool {
	day = truncateDay(day)
	return !day.Before(c.IssuedOn) && !day.After(c.LastDay())
}
