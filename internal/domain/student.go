package domain

import (
	"strings"
	"time"
)

// ArchiveStatus is the archival state of a student record.
type ArchiveStatus string

// Archive statuses. CURRENT -> PERMANENT is one-way.
const (
	ArchiveCurrent   ArchiveStatus = "CURRENT"
	ArchivePermanent ArchiveStatus = "PERMANENT"
)

// Valid reports whether s is a known archive status.
func (s ArchiveStatus) Valid() bool {
	switch s {
	case ArchiveCurrent, ArchivePermanent:
		return true
	}
	return false
}

// Sex is the registered sex of a person.
type Sex string

// Sex values.
const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is a known sex value.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Student is the canonical student record. Code is assigned by the store.
type Student struct {
	Code                 int64         `json:"code"`
	Name                 string        `json:"name"`
	SocialName           string        `json:"social_name,omitempty"`
	BirthDate            time.Time     `json:"birth_date"`
	Sex                  Sex           `json:"sex"`
	MotherName           string        `json:"mother_name,omitempty"`
	FatherName           string        `json:"father_name,omitempty"`
	Twin                 bool          `json:"twin"`
	MissingSchoolHistory bool          `json:"missing_school_history"`
	ExclusiveAEE         bool          `json:"exclusive_aee"`
	ArchiveStatus        ArchiveStatus `json:"archive_status"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// NewStudent creates a CURRENT student record and validates it.
func NewStudent(name string, birthDate time.Time, sex Sex) (*Student, error) {
	now := time.Now().UTC()
	s := &Student{
		Name:          strings.TrimSpace(name),
		BirthDate:     birthDate,
		Sex:           sex,
		ArchiveStatus: ArchiveCurrent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the student's required fields.
func (s *Student) Validate() error {
	if len([]rune(strings.TrimSpace(s.Name))) < 2 {
		return NewValidationError("name", "must have at least 2 characters", ErrValidation)
	}
	if s.BirthDate.IsZero() {
		return NewValidationError("birth_date", "is required", ErrValidation)
	}
	if s.BirthDate.After(time.Now().UTC()) {
		return NewValidationError("birth_date", "cannot be in the future", ErrValidation)
	}
	if !s.Sex.Valid() {
		return NewValidationError("sex", "must be M or F", ErrValidation)
	}
	if !s.ArchiveStatus.Valid() {
		return NewValidationError("archive_status", "is invalid", ErrValidation)
	}
	return nil
}

// DisplayName returns the social name when set, otherwise the civil name.
func (s *Student) DisplayName() string {
	if s.SocialName != "" {
		return s.SocialName
	}
	return s.Name
}

// IsArchived reports whether the student was moved to the permanent archive.
func (s *Student) IsArchived() bool {
	return s.ArchiveStatus == ArchivePermanent
}

// Archive moves the student to the permanent archive.
func (s *Student) Archive(now time.Time) error {
	if s.IsArchived() {
		return ErrStudentArchived
	}
	s.ArchiveStatus = ArchivePermanent
	s.UpdatedAt = now
	return nil
}
