package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AttendanceSituation is the outcome of a roll call for one student.
type AttendanceSituation string

// Attendance situations.
const (
	AttendancePresent   AttendanceSituation = "PRESENT"
	AttendanceAbsent    AttendanceSituation = "ABSENT"
	AttendanceJustified AttendanceSituation = "JUSTIFIED"
	AttendanceLate      AttendanceSituation = "LATE"
)

// Valid reports whether s is a known situation.
func (s AttendanceSituation) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceJustified, AttendanceLate:
		return true
	}
	return false
}

// CountsAsAbsence reports whether the situation is counted against the
// student's frequency. Justified absences and late arrivals are not.
func (s AttendanceSituation) CountsAsAbsence() bool {
	return s == AttendanceAbsent
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Lesson is one class meeting of a subject. A class cannot have two
// lessons of the same subject starting at the same date and time.
type Lesson struct {
	ID              uuid.UUID `json:"id"`
	ClassID         uuid.UUID `json:"class_id"`
	SubjectID       uuid.UUID `json:"subject_id"`
	Date            time.Time `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Content         string    `json:"content,omitempty"`
	TeacherCode     *int64    `json:"teacher_code,omitempty"`
	AttendanceTaken bool      `json:"attendance_taken"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewLesson creates a lesson stamped with the acting user.
func NewLesson(
	classID, subjectID uuid.UUID,
	date time.Time,
	start, end, content string,
	actor Actor,
	now time.Time,
) (*Lesson, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	l := &Lesson{
		ID:        uuid.New(),
		ClassID:   classID,
		SubjectID: subjectID,
		Date:      truncateDay(date),
		StartTime: strings.TrimSpace(start),
		EndTime:   strings.TrimSpace(end),
		Content:   strings.TrimSpace(content),
		CreatedBy: actor.UserID,
		CreatedAt: now,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the lesson fields. Times use the 24-hour HH:MM format.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil || l.ClassID == uuid.Nil || l.SubjectID == uuid.Nil {
		return NewValidationError("lesson", "requires id, class_id and subject_id", ErrInvalidID)
	}
	if l.Date.IsZero() {
		return NewValidationError("date", "is required", ErrValidation)
	}
	if !clockPattern.MatchString(l.StartTime) {
		return NewValidationError("start_time", "must use HH:MM", ErrInvalidFormat)
	}
	if !clockPattern.MatchString(l.EndTime) {
		return NewValidationError("end_time", "must use HH:MM", ErrInvalidFormat)
	}
	if l.EndTime <= l.StartTime {
		return NewValidationError("end_time", "must be after start_time", ErrOutOfRange)
	}
	return nil
}

// AttendanceRecord is the roll-call result of one student in one lesson.
type AttendanceRecord struct {
	ID          uuid.UUID           `json:"id"`
	LessonID    uuid.UUID           `json:"lesson_id"`
	StudentCode int64               `json:"student_code"`
	Situation   AttendanceSituation `json:"situation"`
	Notes       string              `json:"notes,omitempty"`
	RecordedBy  uuid.UUID           `json:"recorded_by"`
	RecordedAt  time.Time           `json:"recorded_at"`
}

// NewAttendanceRecord creates a record stamped with the acting user.
func NewAttendanceRecord(
	lessonID uuid.UUID,
	studentCode int64,
	situation AttendanceSituation,
	notes string,
	actor Actor,
	now time.Time,
) (*AttendanceRecord, error) {
	r := &AttendanceRecord{
		ID:          uuid.New(),
		LessonID:    lessonID,
		StudentCode: studentCode,
		Situation:   situation,
		Notes:       strings.TrimSpace(notes),
		RecordedBy:  actor.UserID,
		RecordedAt:  now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the record fields.
func (r *AttendanceRecord) Validate() error {
	if r.LessonID == uuid.Nil {
		return NewValidationError("lesson_id", "is required", ErrInvalidID)
	}
	if r.StudentCode <= 0 {
		return NewValidationError("student_code", "is required", ErrInvalidID)
	}
	if !r.Situation.Valid() {
		return NewValidationError("situation", "is invalid", ErrValidation)
	}
	return nil
}
