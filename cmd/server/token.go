package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/guto-escola/guto-api/internal/config"
	"github.com/guto-escola/guto-api/internal/domain"
	"github.com/guto-escola/guto-api/internal/service/auth"
)

// tokenNamespace derives stable user IDs from usernames so that a re-issued
// token attributes writes to the same user.
var tokenNamespace = uuid.MustParse("6f1c2a9e-4b7d-4e0a-9c3f-2d8b5e71a604")

// issueToken signs an access token for username. Accounts are managed
// outside this service; this exists for local development.
func issueToken(ctx context.Context, cfg config.AuthConfig, username string) (string, error) {
	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	actor := domain.Actor{
		UserID:   uuid.NewSHA1(tokenNamespace, []byte(username)),
		Username: username,
	}
	token, err := jwtService.GenerateToken(ctx, actor)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}
