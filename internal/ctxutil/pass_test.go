package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassID_IsUUIDv7(t *testing.T) {
	id := NewPassID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, NewPassID())
}

func TestPassIDFromContext(t *testing.T) {
	assert.Equal(t, "", PassIDFromContext(context.Background()))

	ctx := WithPassID(context.Background(), "pass-1")
	assert.Equal(t, "pass-1", PassIDFromContext(ctx))
}

func TestEnsurePassID(t *testing.T) {
	ctx, id := EnsurePassID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, PassIDFromContext(ctx))

	again, sameID := EnsurePassID(ctx)
	assert.Equal(t, id, sameID)
	assert.Equal(t, ctx, again)
}
