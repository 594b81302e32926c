package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Concept is a qualitative grade level such as "A", with its numeric
// equivalent on the 0..10 scale.
type Concept struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	NumericValue float64   `json:"numeric_value"`
	Active       bool      `json:"active"`
}

// NewConcept creates an active concept.
func NewConcept(name, description string, value float64) (*Concept, error) {
	c := &Concept{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		NumericValue: value,
		Active:       true,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the concept fields.
func (c *Concept) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if c.Name == "" || len(c.Name) > 10 {
		return NewValidationError("name", "must have 1 to 10 characters", ErrValidation)
	}
	if c.NumericValue < 0 || c.NumericValue > 10 {
		return NewValidationError("numeric_value", "must be between 0 and 10", ErrOutOfRange)
	}
	return nil
}
