package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pawpoll/internal/apperror"
	"github.com/sakif/pawpoll/internal/model"
)

func newComment(placeID, owner, text string) *model.Comment {
	return &model.Comment{
		PlaceID:      placeID,
		PlaceName:    "Bark Cafe",
		PlaceAddress: "1 Main St",
		Text:         text,
		OwnerEmail:   owner,
	}
}

func TestCommentRepo_ListByPlace_DisplayNames(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.profiles.Upsert(ctx, "a@x.com", "Alice")
	require.NoError(t, err)

	require.NoError(t, r.comments.Create(ctx, newComment("P1", "a@x.com", "from alice")))
	require.NoError(t, r.comments.Create(ctx, newComment("P1", "a@x.com", "alice again")))
	require.NoError(t, r.comments.Create(ctx, newComment("P1", "b@y.com", "from bob")))

	list, err := r.comments.ListByPlace(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "from bob", list[0].Text)
	assert.Equal(t, "b@y.com", list[0].DisplayName, "no profile falls back to email")
	assert.Equal(t, "Alice", list[1].DisplayName)
	assert.Equal(t, "from alice", list[2].Text)
}

func TestCommentRepo_ListByOwner(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	empty, err := r.comments.ListByOwner(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	require.NoError(t, r.comments.Create(ctx, newComment("P1", "a@x.com", "one")))
	require.NoError(t, r.comments.Create(ctx, newComment("P2", "a@x.com", "two")))
	require.NoError(t, r.comments.Create(ctx, newComment("P1", "b@y.com", "not mine")))

	list, err := r.comments.ListByOwner(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Text)
	assert.Equal(t, "1 Main St", list[0].PlaceAddress)
}

func TestCommentRepo_UpdateAndDelete(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	c := newComment("P1", "a@x.com", "before")
	require.NoError(t, r.comments.Create(ctx, c))

	assert.ErrorIs(t, r.comments.UpdateText(ctx, c.ID, "b@y.com", "hijack"), apperror.ErrNotFound)
	require.NoError(t, r.comments.UpdateText(ctx, c.ID, "a@x.com", "after"))

	list, err := r.comments.ListByPlace(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "after", list[0].Text)

	assert.ErrorIs(t, r.comments.Delete(ctx, c.ID, "b@y.com"), apperror.ErrNotFound)
	require.NoError(t, r.comments.Delete(ctx, c.ID, "a@x.com"))

	list, err = r.comments.ListByPlace(ctx, "P1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
