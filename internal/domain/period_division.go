package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DivisionKind is the kind of segment an academic period is split into.
type DivisionKind string

// Division kinds.
const (
	DivisionBimester  DivisionKind = "BIMESTRE"
	DivisionTrimester DivisionKind = "TRIMESTRE"
	DivisionSemester  DivisionKind = "SEMESTRE"
	DivisionYearly    DivisionKind = "ANUAL"
)

// Valid reports whether k is a known division kind.
func (k DivisionKind) Valid() bool {
	switch k {
	case DivisionBimester, DivisionTrimester, DivisionSemester, DivisionYearly:
		return true
	}
	return false
}

// PeriodDivision is one segment of an academic period. Order is unique
// within the period.
type PeriodDivision struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Kind      DivisionKind `json:"kind"`
	Period    string       `json:"period"`
	Order     int          `json:"order"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Active    bool         `json:"active"`
}

// NewPeriodDivision creates an active division.
func NewPeriodDivision(
	name string,
	kind DivisionKind,
	period string,
	order int,
	start, end time.Time,
) (*PeriodDivision, error) {
	d := &PeriodDivision{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Kind:      kind,
		Period:    strings.TrimSpace(period),
		Order:     order,
		StartDate: start,
		EndDate:   end,
		Active:    true,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the division fields.
func (d *PeriodDivision) Validate() error {
	if d.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if d.Name == "" {
		return NewValidationError("name", "is required", ErrValidation)
	}
	if !d.Kind.Valid() {
		return NewValidationError("kind", "is invalid", ErrValidation)
	}
	if !periodPattern.MatchString(d.Period) {
		return NewValidationError("period", "must be a 4-digit year", ErrInvalidFormat)
	}
	if d.Order < 1 {
		return NewValidationError("order", "must be positive", ErrOutOfRange)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return NewValidationError("start_date", "and end_date are required", ErrValidation)
	}
	if d.EndDate.Before(d.StartDate) {
		return NewValidationError("end_date", "must not be before start_date", ErrOutOfRange)
	}
	return nil
}

// Contains reports whether day falls within the division, inclusive.
func (d *PeriodDivision) Contains(day time.Time) bool {
	day = truncateDay(day)
	return !day.Before(truncateDay(d.StartDate)) && !day.After(truncateDay(d.EndDate))
}

func truncateDay(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
