package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EvaluationType is a category of assessment (test, homework, project)
// with the weight new evaluations of the type start with.
type EvaluationType struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	DefaultWeight float64   `json:"default_weight"`
	Active        bool      `json:"active"`
}

// NewEvaluationType creates an active evaluation type.
func NewEvaluationType(name, description string, defaultWeight float64) (*EvaluationType, error) {
	if defaultWeight == 0 {
		defaultWeight = 1
	}
	t := &EvaluationType{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(name),
		Description:   strings.TrimSpace(description),
		DefaultWeight: defaultWeight,
		Active:        true,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the evaluation type fields.
func (t *EvaluationType) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if t.Name == "" {
		return NewValidationError("name", "is required", ErrValidation)
	}
	if t.DefaultWeight <= 0 || t.DefaultWeight > 10 {
		return NewValidationError("default_weight", "must be greater than 0 and at most 10", ErrOutOfRange)
	}
	return nil
}

// Evaluation defaults.
const (
	DefaultMaxValue = 10.0
	DefaultWeight   = 1.0
)

// Evaluation is one assessment applied to a class in a subject during a
// period division.
type Evaluation struct {
	ID         uuid.UUID `json:"id"`
	ClassID    uuid.UUID `json:"class_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	DivisionID uuid.UUID `json:"division_id"`
	TypeID     uuid.UUID `json:"type_id"`
	Name       string    `json:"name"`
	AppliedOn  time.Time `json:"applied_on"`
	MaxValue   float64   `json:"max_value"`
	Weight     float64   `json:"weight"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EvaluationParams holds the inputs for NewEvaluation. Zero MaxValue and
// Weight fall back to DefaultMaxValue and DefaultWeight.
type EvaluationParams struct {
	ClassID    uuid.UUID
	SubjectID  uuid.UUID
	DivisionID uuid.UUID
	TypeID     uuid.UUID
	Name       string
	AppliedOn  time.Time
	MaxValue   float64
	Weight     float64
}

// NewEvaluation creates an evaluation stamped with the acting user.
func NewEvaluation(p EvaluationParams, actor Actor, now time.Time) (*Evaluation, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if p.MaxValue == 0 {
		p.MaxValue = DefaultMaxValue
	}
	if p.Weight == 0 {
		p.Weight = DefaultWeight
	}
	e := &Evaluation{
		ID:         uuid.New(),
		ClassID:    p.ClassID,
		SubjectID:  p.SubjectID,
		DivisionID: p.DivisionID,
		TypeID:     p.TypeID,
		Name:       strings.TrimSpace(p.Name),
		AppliedOn:  p.AppliedOn,
		MaxValue:   p.MaxValue,
		Weight:     p.Weight,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the evaluation fields.
func (e *Evaluation) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	refs := []struct {
		field string
		id    uuid.UUID
	}{
		{"class_id", e.ClassID},
		{"subject_id", e.SubjectID},
		{"division_id", e.DivisionID},
		{"type_id", e.TypeID},
	}
	for _, ref := range refs {
		if ref.id == uuid.Nil {
			return NewValidationError(ref.field, "is required", ErrInvalidID)
		}
	}
	if e.Name == "" {
		return NewValidationError("name", "is required", ErrValidation)
	}
	if e.AppliedOn.IsZero() {
		return NewValidationError("applied_on", "is required", ErrValidation)
	}
	if e.MaxValue <= 0 || e.MaxValue > 100 || math.IsNaN(e.MaxValue) {
		return NewValidationError("max_value", "must be greater than 0 and at most 100", ErrOutOfRange)
	}
	if e.Weight <= 0 || e.Weight > 10 || math.IsNaN(e.Weight) {
		return NewValidationError("weight", "must be greater than 0 and at most 10", ErrOutOfRange)
	}
	return nil
}
