package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActionKind is what a user did.
type ActionKind string

// Action kinds.
const (
	ActionCreate     ActionKind = "CREATE"
	ActionUpdate     ActionKind = "UPDATE"
	ActionDelete     ActionKind = "DELETE"
	ActionArchive    ActionKind = "ARCHIVE"
	ActionEnroll     ActionKind = "ENROLL"
	ActionDisenroll  ActionKind = "DISENROLL"
	ActionTransfer   ActionKind = "TRANSFER"
	ActionGrade      ActionKind = "GRADE"
	ActionAttendance ActionKind = "ATTENDANCE"
	ActionClose      ActionKind = "CLOSE"
	ActionReopen     ActionKind = "REOPEN"
)

// Module is the area of the system an activity belongs to.
type Module string

// Modules.
const (
	ModuleStudents   Module = "STUDENTS"
	ModuleStaff      Module = "STAFF"
	ModuleClasses    Module = "CLASSES"
	ModuleEnrollment Module = "ENROLLMENT"
	ModuleSubjects   Module = "SUBJECTS"
	ModuleEvaluation Module = "EVALUATION"
	ModuleGradebook  Module = "GRADEBOOK"
)

// ActivityEntry is an immutable record of a user action, shown on the
// dashboard newest first.
type ActivityEntry struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	Action      ActionKind `json:"action"`
	Module      Module     `json:"module"`
	ObjectName  string     `json:"object_name"`
	ObjectID    string     `json:"object_id,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewActivityEntry builds an entry for actor.
func NewActivityEntry(
	actor Actor,
	action ActionKind,
	module Module,
	objectName, objectID, description string,
	now time.Time,
) (*ActivityEntry, error) {
	e := &ActivityEntry{
		ID:          uuid.New(),
		UserID:      actor.UserID,
		Username:    actor.Username,
		Action:      action,
		Module:      module,
		ObjectName:  strings.TrimSpace(objectName),
		ObjectID:    objectID,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the required fields only.
func (e *ActivityEntry) Validate() error {
	switch {
	case e.UserID == uuid.Nil:
		return NewValidationError("user_id", "is required", ErrUnauthorized)
	case e.Action == "":
		return NewValidationError("action", "is required", ErrValidation)
	case e.Module == "":
		return NewValidationError("module", "is required", ErrValidation)
	case e.ObjectName == "":
		return NewValidationError("object_name", "is required", ErrValidation)
	}
	return nil
}
