package domain

import "github.com/google/uuid"

// Actor identifies the user performing a mutating operation. It is passed
// explicitly to every operation that stamps audit fields.
type Actor struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// Validate checks that the actor carries a user ID.
func (a Actor) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrUnauthorized
	}
	return nil
}
