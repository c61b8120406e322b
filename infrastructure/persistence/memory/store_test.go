package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogstore/domain/model"
)

func testPost(userID, postID string, createdAt time.Time, status string) *model.Post {
	return &model.Post{
		PostID:    postID,
		UserID:    userID,
		Title:     "title " + postID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestPostsByUser_TieBreakOnPostID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.PostsByUser().Save(ctx, testPost("u1", "b", at, "DRAFT")))
	require.NoError(t, store.PostsByUser().Save(ctx, testPost("u1", "a", at, "DRAFT")))
	require.NoError(t, store.PostsByUser().Save(ctx, testPost("u1", "c", at.Add(time.Second), "DRAFT")))

	posts, err := store.PostsByUser().FindByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "c", posts[0].PostID)
	assert.Equal(t, "a", posts[1].PostID)
	assert.Equal(t, "b", posts[2].PostID)
}

func TestPostsByUser_SaveIsAnUpsertOnTheSameKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	at := time.Now().UTC()

	post := testPost("u1", "p1", at, "DRAFT")
	require.NoError(t, store.PostsByUser().Save(ctx, post))

	post.Title = "updated"
	require.NoError(t, store.PostsByUser().Save(ctx, post))

	posts, err := store.PostsByUser().FindByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "updated", posts[0].Title)
}

func TestPostsByStatus_DeleteUsesTheWrittenStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	at := time.Now().UTC()

	post := testPost("u1", "p1", at, "DRAFT")
	require.NoError(t, store.PostsByStatus().Save(ctx, post))

	// The post's status moved on, but the stored row is keyed by DRAFT.
	post.Status = "PUBLISHED"
	require.NoError(t, store.PostsByStatus().Delete(ctx, post.StatusKey("DRAFT")))

	drafts, err := store.PostsByStatus().FindByUserAndStatus(ctx, "u1", "DRAFT")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	post := testPost("u1", "p1", time.Now().UTC(), "DRAFT")
	post.Tags = []string{"go"}
	require.NoError(t, store.PostsByID().Save(ctx, post))

	got, err := store.PostsByID().FindByID(ctx, "p1")
	require.NoError(t, err)
	got.Tags[0] = "mutated"
	got.Title = "mutated"

	again, err := store.PostsByID().FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "go", again.Tags[0])
	assert.Equal(t, "title p1", again.Title)
}
