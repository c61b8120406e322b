package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "blogstore/pkg/errors"
)

func TestNewPost_DefaultsToDraft(t *testing.T) {
	post, err := NewPost("user1", "Title", "Content", "", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, post.Status)
	assert.NotEmpty(t, post.PostID)
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
}

func TestNewPost_KeepsExplicitStatus(t *testing.T) {
	post, err := NewPost("user1", "Title", "Content", "ARCHIVED", nil)
	require.NoError(t, err)

	assert.Equal(t, "ARCHIVED", post.Status)
}

func TestNewPost_RequiresUserAndTitle(t *testing.T) {
	_, err := NewPost("", "Title", "", "", nil)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewPost("user1", "", "", "", nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestNewPost_DeduplicatesTags(t *testing.T) {
	post, err := NewPost("user1", "Title", "", "", []string{"go", "db", "go", ""})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"go", "db"}, post.Tags)
}

func TestApply_NeverTouchesCreatedAt(t *testing.T) {
	post, err := NewPost("user1", "Title", "Content", "", nil)
	require.NoError(t, err)
	created := post.CreatedAt

	title := "New Title"
	post.Apply(PostUpdate{Title: &title})

	assert.Equal(t, created, post.CreatedAt)
	assert.Equal(t, "New Title", post.Title)
	assert.True(t, post.UpdatedAt.After(created) || post.UpdatedAt.Equal(created))
}

func TestApply_NilFieldsLeftAlone(t *testing.T) {
	post, err := NewPost("user1", "Title", "Content", StatusDraft, []string{"go"})
	require.NoError(t, err)

	content := "updated content"
	post.Apply(PostUpdate{Content: &content})

	assert.Equal(t, "Title", post.Title)
	assert.Equal(t, "updated content", post.Content)
	assert.Equal(t, StatusDraft, post.Status)
	assert.Equal(t, []string{"go"}, post.Tags)
}

func TestStatusKey_EmbedsGivenStatus(t *testing.T) {
	post, err := NewPost("user1", "Title", "", StatusDraft, nil)
	require.NoError(t, err)

	oldKey := post.StatusKey(StatusDraft)
	newKey := post.StatusKey(StatusPublished)

	assert.Equal(t, StatusDraft, oldKey.Status)
	assert.Equal(t, StatusPublished, newKey.Status)
	assert.Equal(t, oldKey.CreatedAt, newKey.CreatedAt)
	assert.Equal(t, oldKey.PostID, newKey.PostID)
}

func TestClone_DoesNotShareTagSlice(t *testing.T) {
	post, err := NewPost("user1", "Title", "", "", []string{"go"})
	require.NoError(t, err)

	clone := post.Clone()
	clone.Tags[0] = "changed"

	assert.Equal(t, "go", post.Tags[0])
}

func TestByUserKey_UsesImmutableCreatedAt(t *testing.T) {
	post, err := NewPost("user1", "Title", "", "", nil)
	require.NoError(t, err)
	created := post.CreatedAt

	time.Sleep(time.Millisecond)
	title := "changed"
	post.Apply(PostUpdate{Title: &title})

	assert.Equal(t, created, post.ByUserKey().CreatedAt)
}
