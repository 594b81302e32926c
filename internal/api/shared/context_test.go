package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guto-escola/guto-api/internal/domain"
)

func TestActorContext(t *testing.T) {
	ctx := context.Background()

	_, ok := ActorFromContext(ctx)
	assert.False(t, ok, "empty context has no actor")

	_, ok = ActorFromContext(WithActor(ctx, domain.Actor{Username: "sem id"}))
	assert.False(t, ok, "an actor without user ID is not authenticated")

	actor := domain.Actor{UserID: uuid.New(), Username: "secretaria"}
	got, ok := ActorFromContext(WithActor(ctx, actor))
	require.True(t, ok)
	assert.Equal(t, actor, got)
}

func TestActorFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), ActorContextKey, "secretaria")
	_, ok := ActorFromContext(ctx)
	assert.False(t, ok)
}

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	traceID := GetTraceID(traced)
	assert.Len(t, traceID, TraceIDLength*2)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "parent context is unchanged")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))
}

func TestGetTraceID_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestFallbackTraceID(t *testing.T) {
	id := generateFallbackTraceID()
	assert.Len(t, id, TraceIDLength*2)
	_, err := hex.DecodeString(id)
	assert.NoError(t, err)
}
