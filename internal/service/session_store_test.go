package service

import (
	"context"
	"edumind_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	_, ok := store.Get(ctx, "u1")
	assert.False(t, ok)

	first := &model.AdaptiveTestSession{UserID: "u1", TestID: "t1"}
	require.NoError(t, store.Set(ctx, "u1", first))

	second := &model.AdaptiveTestSession{UserID: "u1", TestID: "t2"}
	require.NoError(t, store.Set(ctx, "u1", second))

	got, ok := store.Get(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, "t2", got.TestID)

	// 用户之间互不可见
	_, ok = store.Get(ctx, "u2")
	assert.False(t, ok)
}
