package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Enrollment links one student to one class. At most one enrollment per
// student is active at any time; inactive rows are kept as history.
type Enrollment struct {
	ID              uuid.UUID  `json:"id"`
	StudentCode     int64      `json:"student_code"`
	ClassID         uuid.UUID  `json:"class_id"`
	Active          bool       `json:"active"`
	RosterPosition  *int       `json:"roster_position,omitempty"`
	EnrolledAt      time.Time  `json:"enrolled_at"`
	EnrolledBy      uuid.UUID  `json:"enrolled_by"`
	DisenrolledAt   *time.Time `json:"disenrolled_at,omitempty"`
	DisenrollReason string     `json:"disenroll_reason,omitempty"`
	DisenrolledBy   *uuid.UUID `json:"disenrolled_by,omitempty"`
}

// NewEnrollment creates an active enrollment stamped with the acting user.
func NewEnrollment(studentCode int64, classID uuid.UUID, actor Actor, now time.Time) (*Enrollment, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	e := &Enrollment{
		ID:          uuid.New(),
		StudentCode: studentCode,
		ClassID:     classID,
		Active:      true,
		EnrolledAt:  now,
		EnrolledBy:  actor.UserID,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the enrollment's references.
func (e *Enrollment) Validate() error {
	if e.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if e.StudentCode <= 0 {
		return NewValidationError("student_code", "is required", ErrInvalidID)
	}
	if e.ClassID == uuid.Nil {
		return NewValidationError("class_id", "is required", ErrInvalidID)
	}
	if e.RosterPosition != nil && *e.RosterPosition < 1 {
		return NewValidationError("roster_position", "must be positive", ErrOutOfRange)
	}
	return nil
}

// Disenroll deactivates the enrollment and stamps date, reason and user.
func (e *Enrollment) Disenroll(reason string, actor Actor, now time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !e.Active {
		return ErrNotActive
	}
	userID := actor.UserID
	e.Active = false
	e.DisenrolledAt = &now
	e.DisenrollReason = strings.TrimSpace(reason)
	e.DisenrolledBy = &userID
	return nil
}

// RosterOrder is the strategy used to order a class roster.
type RosterOrder string

// Roster orderings.
const (
	RosterAlphabetic  RosterOrder = "ALPHABETIC"
	RosterBirthDate   RosterOrder = "BIRTH_DATE"
	RosterStudentCode RosterOrder = "STUDENT_CODE"
	RosterCustom      RosterOrder = "CUSTOM"
)

// Valid reports whether o is a known ordering.
func (o RosterOrder) Valid() bool {
	switch o {
	case RosterAlphabetic, RosterBirthDate, RosterStudentCode, RosterCustom:
		return true
	}
	return false
}

// RosterEntry is one student on a class roster.
type RosterEntry struct {
	Student      Student   `json:"student"`
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	Position     *int      `json:"position,omitempty"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// SortRoster orders entries in place. Names compare with Portuguese
// collation so accented names sort where a reader expects them. Ties fall
// back to the student code, so the result is deterministic. CUSTOM puts
// entries without a position last, alphabetically.
func SortRoster(entries []RosterEntry, order RosterOrder) {
	// collate.Collator keeps internal buffers, so each call gets its own.
	collator := collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
	byName := func(a, b *RosterEntry) int {
		if c := collator.CompareString(a.Student.Name, b.Student.Name); c != 0 {
			return c
		}
		switch {
		case a.Student.Code < b.Student.Code:
			return -1
		case a.Student.Code > b.Student.Code:
			return 1
		}
		return 0
	}

	var less func(a, b *RosterEntry) bool
	switch order {
	case RosterBirthDate:
		less = func(a, b *RosterEntry) bool {
			if !a.Student.BirthDate.Equal(b.Student.BirthDate) {
				return a.Student.BirthDate.Before(b.Student.BirthDate)
			}
			return byName(a, b) < 0
		}
	case RosterStudentCode:
		less = func(a, b *RosterEntry) bool {
			return a.Student.Code < b.Student.Code
		}
	case RosterCustom:
		less = func(a, b *RosterEntry) bool {
			switch {
			case a.Position != nil && b.Position != nil:
				if *a.Position != *b.Position {
					return *a.Position < *b.Position
				}
			case a.Position != nil:
				return true
			case b.Position != nil:
				return false
			}
			return byName(a, b) < 0
		}
	default:
		less = func(a, b *RosterEntry) bool {
			return byName(a, b) < 0
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(&entries[i], &entries[j])
	})
}
