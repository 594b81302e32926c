// Package auth validates the bearer tokens that identify the acting user.
//
// Users and sessions are managed outside this service. Tokens are HMAC
// signed JWTs carrying the user ID and display name, which become the
// domain.Actor stamped on every audited write.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for actor.
	GenerateToken(ctx context.Context, actor domain.Actor) (string, error)

	// ValidateToken validates the token and returns its claims. Expired,
	// malformed and wrongly signed tokens fail with ErrExpiredToken or
	// ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	Username  string    `json:"name,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Actor returns the acting identity carried by the claims.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{UserID: c.UserID, Username: c.Username}
}
