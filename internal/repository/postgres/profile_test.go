package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepo_GetOrCreate(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	first, err := r.profiles.GetOrCreate(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.DisplayName)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := r.profiles.GetOrCreate(ctx, "alice@example.com", "other")
	require.NoError(t, err)
	assert.Equal(t, "alice", second.DisplayName, "existing row must not be overwritten")
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestProfileRepo_Upsert(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	created, err := r.profiles.Upsert(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	same, err := r.profiles.Upsert(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)
	assert.True(t, created.UpdatedAt.Equal(same.UpdatedAt), "unchanged name must not bump updated_at")

	renamed, err := r.profiles.Upsert(ctx, "bob@example.com", "Bobby")
	require.NoError(t, err)
	assert.Equal(t, "Bobby", renamed.DisplayName)
	assert.True(t, created.CreatedAt.Equal(renamed.CreatedAt))
}
