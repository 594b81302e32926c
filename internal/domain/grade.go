package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Grade is the result of one student in one evaluation. Exactly one of
// Score, ConceptID, Absent and Exempted is set.
type Grade struct {
	ID           uuid.UUID  `json:"id"`
	EvaluationID uuid.UUID  `json:"evaluation_id"`
	StudentCode  int64      `json:"student_code"`
	Score        *float64   `json:"score,omitempty"`
	ConceptID    *uuid.UUID `json:"concept_id,omitempty"`
	Absent       bool       `json:"absent"`
	Exempted     bool       `json:"exempted"`
	Notes        string     `json:"notes,omitempty"`
	RecordedBy   uuid.UUID  `json:"recorded_by"`
	RecordedAt   time.Time  `json:"recorded_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GradeInput is what a caller submits for one student.
type GradeInput struct {
	Score     *float64
	ConceptID *uuid.UUID
	Absent    bool
	Exempted  bool
	Notes     string
}

func (in GradeInput) provided() int {
	n := 0
	if in.Score != nil {
		n++
	}
	if in.ConceptID != nil {
		n++
	}
	if in.Absent {
		n++
	}
	if in.Exempted {
		n++
	}
	return n
}

// Validate checks the input against the evaluation and the subject's
// grading mode. Concept existence is checked by the caller.
func (in GradeInput) Validate(ev *Evaluation, subject *Subject) error {
	switch n := in.provided(); {
	case n == 0:
		return fmt.Errorf("%w: one of score, concept, absent or exempted is required", ErrMissingGradeInput)
	case n > 1:
		return fmt.Errorf("%w: only one of score, concept, absent or exempted may be set", ErrConflictingGradeInput)
	}

	if in.Score != nil {
		if subject != nil && subject.ConceptGraded() {
			return fmt.Errorf("%w: subject %s is graded by concept", ErrGradingModeMismatch, subject.Code)
		}
		score := *in.Score
		if math.IsNaN(score) || score < 0 || score > ev.MaxValue {
			return NewValidationError("score", fmt.Sprintf("must be between 0 and %g", ev.MaxValue), ErrOutOfRange)
		}
	}
	if in.ConceptID != nil {
		if *in.ConceptID == uuid.Nil {
			return NewValidationError("concept_id", "is invalid", ErrInvalidID)
		}
		if subject != nil && !subject.ConceptGraded() {
			return fmt.Errorf("%w: subject %s is graded by score", ErrGradingModeMismatch, subject.Code)
		}
	}
	return nil
}

// NewGrade builds the grade row an input produces. The input must have
// been validated.
func NewGrade(evaluationID uuid.UUID, studentCode int64, in GradeInput, actor Actor, now time.Time) *Grade {
	g := &Grade{
		ID:           uuid.New(),
		EvaluationID: evaluationID,
		StudentCode:  studentCode,
		Absent:       in.Absent,
		Exempted:     in.Exempted,
		Notes:        strings.TrimSpace(in.Notes),
		RecordedBy:   actor.UserID,
		RecordedAt:   now,
		UpdatedAt:    now,
	}
	if in.Score != nil {
		score := *in.Score
		g.Score = &score
	}
	if in.ConceptID != nil {
		id := *in.ConceptID
		g.ConceptID = &id
	}
	return g
}

// Validate checks that exactly one outcome is recorded.
func (g *Grade) Validate() error {
	in := GradeInput{Score: g.Score, ConceptID: g.ConceptID, Absent: g.Absent, Exempted: g.Exempted}
	switch n := in.provided(); {
	case n == 0:
		return ErrMissingGradeInput
	case n > 1:
		return ErrConflictingGradeInput
	}
	if g.EvaluationID == uuid.Nil {
		return NewValidationError("evaluation_id", "is required", ErrInvalidID)
	}
	if g.StudentCode <= 0 {
		return NewValidationError("student_code", "is required", ErrInvalidID)
	}
	return nil
}
