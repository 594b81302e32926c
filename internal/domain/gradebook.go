package domain

import (
	"time"

	"github.com/google/uuid"
)

// GradebookStatus is the lifecycle state of a gradebook.
type GradebookStatus string

// Gradebook states. New gradebooks are OPEN.
const (
	GradebookOpen   GradebookStatus = "OPEN"
	GradebookClosed GradebookStatus = "CLOSED"
)

// Gradebook is the electronic record book of one subject in one class for
// an academic period. While closed it rejects grade and attendance changes.
type Gradebook struct {
	ID         uuid.UUID       `json:"id"`
	ClassID    uuid.UUID       `json:"class_id"`
	SubjectID  uuid.UUID       `json:"subject_id"`
	Period     string          `json:"period"`
	Status     GradebookStatus `json:"status"`
	ClosedAt   *time.Time      `json:"closed_at,omitempty"`
	ClosedBy   *uuid.UUID      `json:"closed_by,omitempty"`
	ReopenedAt *time.Time      `json:"reopened_at,omitempty"`
	ReopenedBy *uuid.UUID      `json:"reopened_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewGradebook creates an open gradebook.
func NewGradebook(classID, subjectID uuid.UUID, period string, now time.Time) *Gradebook {
	return &Gradebook{
		ID:        uuid.New(),
		ClassID:   classID,
		SubjectID: subjectID,
		Period:    period,
		Status:    GradebookOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsClosed reports whether the gradebook is closed.
func (g *Gradebook) IsClosed() bool {
	return g.Status == GradebookClosed
}

// EnsureOpen returns ErrGradebookClosed when the gradebook is closed.
func (g *Gradebook) EnsureOpen() error {
	if g.IsClosed() {
		return ErrGradebookClosed
	}
	return nil
}

// Close moves the gradebook from OPEN to CLOSED. The completeness check
// runs before this is called.
func (g *Gradebook) Close(actor Actor, now time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if g.IsClosed() {
		return ErrGradebookClosed
	}
	userID := actor.UserID
	g.Status = GradebookClosed
	g.ClosedAt = &now
	g.ClosedBy = &userID
	g.UpdatedAt = now
	return nil
}

// Reopen moves the gradebook from CLOSED to OPEN and records who did it.
// The previous closing stamp is kept.
func (g *Gradebook) Reopen(actor Actor, now time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !g.IsClosed() {
		return ErrGradebookNotClosed
	}
	userID := actor.UserID
	g.Status = GradebookOpen
	g.ReopenedAt = &now
	g.ReopenedBy = &userID
	g.UpdatedAt = now
	return nil
}
