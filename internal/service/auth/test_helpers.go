package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guto-escola/guto-api/internal/domain"
)

// TestJWTSecret is the signing secret used by NewTestJWTService.
const TestJWTSecret = "test-jwt-secret-that-is-32-chars-long"

// NewTestJWTService creates a JWT service with a fixed clock for tests.
// A nil timeFunc uses time.Now.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return newHMACService(secret, lifetime, timeFunc)
}

// GenerateTestToken signs a one-hour token for actor with TestJWTSecret.
func GenerateTestToken(t *testing.T, actor domain.Actor) string {
	t.Helper()
	token, err := NewTestJWTService(TestJWTSecret, time.Hour, nil).GenerateToken(context.Background(), actor)
	require.NoError(t, err)
	return token
}
