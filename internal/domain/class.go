package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EducationType is the teaching stage of a class.
type EducationType string

// Education types.
const (
	EarlyChildhood EducationType = "EDUCACAO_INFANTIL"
	ElementaryI    EducationType = "ENSINO_FUNDAMENTAL_I"
	ElementaryII   EducationType = "ENSINO_FUNDAMENTAL_II"
	HighSchool     EducationType = "ENSINO_MEDIO"
)

// GradeLevel is the year or series of a class within its education type.
type GradeLevel string

// Grade levels.
const (
	LevelNursery    GradeLevel = "BERÇARIO"
	LevelMaternalI  GradeLevel = "MATERNAL_I"
	LevelMaternalII GradeLevel = "MATERNAL_II"
	LevelPreI       GradeLevel = "PRE_I"
	LevelPreII      GradeLevel = "PRE_II"
	LevelYear1      GradeLevel = "1_ANO"
	LevelYear2      GradeLevel = "2_ANO"
	LevelYear3      GradeLevel = "3_ANO"
	LevelYear4      GradeLevel = "4_ANO"
	LevelYear5      GradeLevel = "5_ANO"
	LevelYear6      GradeLevel = "6_ANO"
	LevelYear7      GradeLevel = "7_ANO"
	LevelYear8      GradeLevel = "8_ANO"
	LevelYear9      GradeLevel = "9_ANO"
	LevelHighYear1  GradeLevel = "1_ANO_EM"
	LevelHighYear2  GradeLevel = "2_ANO_EM"
	LevelHighYear3  GradeLevel = "3_ANO_EM"
)

var gradeLevelsByType = map[EducationType][]GradeLevel{
	EarlyChildhood: {LevelNursery, LevelMaternalI, LevelMaternalII, LevelPreI, LevelPreII},
	ElementaryI:    {LevelYear1, LevelYear2, LevelYear3, LevelYear4, LevelYear5},
	ElementaryII:   {LevelYear6, LevelYear7, LevelYear8, LevelYear9},
	HighSchool:     {LevelHighYear1, LevelHighYear2, LevelHighYear3},
}

// Valid reports whether t is a known education type.
func (t EducationType) Valid() bool {
	_, ok := gradeLevelsByType[t]
	return ok
}

// GradeLevelsFor lists the grade levels offered by an education type, in
// order. It returns nil for an unknown type.
func GradeLevelsFor(t EducationType) []GradeLevel {
	levels := gradeLevelsByType[t]
	if levels == nil {
		return nil
	}
	out := make([]GradeLevel, len(levels))
	copy(out, levels)
	return out
}

// BelongsTo reports whether the level is offered by the education type.
func (l GradeLevel) BelongsTo(t EducationType) bool {
	for _, candidate := range gradeLevelsByType[t] {
		if candidate == l {
			return true
		}
	}
	return false
}

// Shift is the period of the day a class meets.
type Shift string

// Shifts.
const (
	ShiftMorning   Shift = "MATUTINO"
	ShiftAfternoon Shift = "VESPERTINO"
	ShiftNight     Shift = "NOTURNO"
	ShiftFullDay   Shift = "INTEGRAL"
)

// Valid reports whether s is a known shift.
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight, ShiftFullDay:
		return true
	}
	return false
}

// Class capacity bounds.
const (
	DefaultClassCapacity = 30
	MaxClassCapacity     = 50
)

var periodPattern = regexp.MustCompile(`^\d{4}$`)

// Class is a section of students for one academic period. Name is unique
// within the period.
type Class struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Period              string        `json:"period"`
	EducationType       EducationType `json:"education_type"`
	GradeLevel          GradeLevel    `json:"grade_level"`
	Shift               Shift         `json:"shift"`
	Capacity            int           `json:"capacity"`
	RosterOrder         RosterOrder   `json:"roster_order"`
	HomeroomTeacherCode *int64        `json:"homeroom_teacher_code,omitempty"`
	CreatedBy           uuid.UUID     `json:"created_by"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// NewClass creates a class with the default capacity and alphabetic roster ordering.
func NewClass(
	name, period string,
	educationType EducationType,
	level GradeLevel,
	shift Shift,
	createdBy uuid.UUID,
) (*Class, error) {
	now := time.Now().UTC()
	c := &Class{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(name),
		Period:        strings.TrimSpace(period),
		EducationType: educationType,
		GradeLevel:    level,
		Shift:         shift,
		Capacity:      DefaultClassCapacity,
		RosterOrder:   RosterAlphabetic,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the class fields.
func (c *Class) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if len([]rune(strings.TrimSpace(c.Name))) < 2 {
		return NewValidationError("name", "must have at least 2 characters", ErrValidation)
	}
	if !periodPattern.MatchString(c.Period) {
		return NewValidationError("period", "must be a 4-digit year", ErrInvalidFormat)
	}
	if !c.EducationType.Valid() {
		return NewValidationError("education_type", "is invalid", ErrValidation)
	}
	if !c.GradeLevel.BelongsTo(c.EducationType) {
		return NewValidationError("grade_level", "is not offered by the education type", ErrValidation)
	}
	if !c.Shift.Valid() {
		return NewValidationError("shift", "is invalid", ErrValidation)
	}
	if c.Capacity < 1 || c.Capacity > MaxClassCapacity {
		return NewValidationError("capacity", "must be between 1 and 50", ErrOutOfRange)
	}
	if !c.RosterOrder.Valid() {
		return NewValidationError("roster_order", "is invalid", ErrValidation)
	}
	return nil
}

// HasCapacity reports whether one more student fits given the current
// number of active enrollments.
func (c *Class) HasCapacity(activeCount int) bool {
	return activeCount < c.Capacity
}

// AvailableSeats returns the number of free seats, never negative.
func (c *Class) AvailableSeats(activeCount int) int {
	if free := c.Capacity - activeCount; free > 0 {
		return free
	}
	return 0
}

// Occupancy returns the rounded percentage of seats in use.
func (c *Class) Occupancy(activeCount int) int {
	if c.Capacity == 0 {
		return 0
	}
	return int(float64(activeCount*100)/float64(c.Capacity) + 0.5)
}
