package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// RecoveryMaxScore is the top of the special recovery scale, which matches
// the 0..10 scale of weighted averages.
const RecoveryMaxScore = 10.0

// Recovery is the special recovery of a student in one class and subject.
// Either Score is set or the student declined the recovery (DidNotOpt).
// CurrentAverage is the weighted average the student held when the
// recovery was recorded.
type Recovery struct {
	ID             uuid.UUID `json:"id"`
	ClassID        uuid.UUID `json:"class_id"`
	SubjectID      uuid.UUID `json:"subject_id"`
	StudentCode    int64     `json:"student_code"`
	CurrentAverage *float64  `json:"current_average"`
	Score          *float64  `json:"score,omitempty"`
	DidNotOpt      bool      `json:"did_not_opt"`
	RecordedBy     uuid.UUID `json:"recorded_by"`
	RecordedAt     time.Time `json:"recorded_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecoveryInput is what a caller submits for a special recovery.
type RecoveryInput struct {
	Score     *float64
	DidNotOpt bool
}

// Validate requires exactly one of a score and the opt-out flag.
func (in RecoveryInput) Validate() error {
	switch {
	case in.Score == nil && !in.DidNotOpt:
		return fmt.Errorf("%w: one of score or did_not_opt is required", ErrMissingGradeInput)
	case in.Score != nil && in.DidNotOpt:
		return fmt.Errorf("%w: score and did_not_opt are mutually exclusive", ErrConflictingGradeInput)
	}
	if in.Score != nil {
		s := *in.Score
		if math.IsNaN(s) || s < 0 || s > RecoveryMaxScore {
			return NewValidationError("score", "must be between 0 and 10", ErrOutOfRange)
		}
	}
	return nil
}

// NewRecovery builds the recovery an input produces. The input must have
// been validated.
func NewRecovery(
	classID, subjectID uuid.UUID,
	studentCode int64,
	currentAverage *float64,
	in RecoveryInput,
	actor Actor,
	now time.Time,
) *Recovery {
	r := &Recovery{
		ID:          uuid.New(),
		ClassID:     classID,
		SubjectID:   subjectID,
		StudentCode: studentCode,
		DidNotOpt:   in.DidNotOpt,
		RecordedBy:  actor.UserID,
		RecordedAt:  now,
		UpdatedAt:   now,
	}
	if currentAverage != nil {
		avg := *currentAverage
		r.CurrentAverage = &avg
	}
	if in.Score != nil {
		score := *in.Score
		r.Score = &score
	}
	return r
}

// Validate checks the stored recovery.
func (r *Recovery) Validate() error {
	if r.ClassID == uuid.Nil || r.SubjectID == uuid.Nil {
		return NewValidationError("recovery", "requires class_id and subject_id", ErrInvalidID)
	}
	if r.StudentCode <= 0 {
		return NewValidationError("student_code", "is required", ErrInvalidID)
	}
	return RecoveryInput{Score: r.Score, DidNotOpt: r.DidNotOpt}.Validate()
}

// FinalAverage is the result of a subject after special recovery: the
// better of the average and the recovery score. A declined or missing
// recovery leaves the average unchanged.
func FinalAverage(average *float64, r *Recovery) *float64 {
	if r == nil || r.DidNotOpt || r.Score == nil {
		return average
	}
	final := *r.Score
	if average != nil && *average > final {
		final = *average
	}
	final = round2(final)
	return &final
}
