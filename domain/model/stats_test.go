package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserStats_Zeroed(t *testing.T) {
	stats := NewUserStats("user1")

	assert.Equal(t, "user1", stats.UserID)
	assert.Equal(t, 0, stats.TotalPosts)
	assert.Equal(t, 0, stats.PublishedPosts)
	assert.Equal(t, 0, stats.DraftPosts)
	assert.True(t, stats.LastPostDate.IsZero())
}

func TestIncrementPost_TracksStatusBuckets(t *testing.T) {
	stats := NewUserStats("user1")

	stats.IncrementPost(StatusDraft)
	stats.IncrementPost(StatusPublished)
	stats.IncrementPost(StatusPublished)

	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, 2, stats.PublishedPosts)
	assert.Equal(t, 1, stats.DraftPosts)
	assert.False(t, stats.LastPostDate.IsZero())
}

func TestIncrementPost_UntrackedStatusOnlyBumpsTotal(t *testing.T) {
	stats := NewUserStats("user1")

	stats.IncrementPost("ARCHIVED")

	assert.Equal(t, 1, stats.TotalPosts)
	assert.Equal(t, 0, stats.PublishedPosts)
	assert.Equal(t, 0, stats.DraftPosts)
}

func TestDecrementPost_FlooredAtZero(t *testing.T) {
	stats := NewUserStats("user1")

	stats.DecrementPost(StatusPublished)
	stats.DecrementPost(StatusDraft)

	assert.Equal(t, 0, stats.TotalPosts)
	assert.Equal(t, 0, stats.PublishedPosts)
	assert.Equal(t, 0, stats.DraftPosts)
}

func TestDecrementPost_DoesNotTouchLastPostDate(t *testing.T) {
	stats := NewUserStats("user1")
	stats.IncrementPost(StatusDraft)
	last := stats.LastPostDate

	stats.DecrementPost(StatusDraft)

	assert.Equal(t, last, stats.LastPostDate)
}

func TestStatusTransition_NetTotalUnchanged(t *testing.T) {
	stats := NewUserStats("user1")
	stats.IncrementPost(StatusDraft)

	// A DRAFT to PUBLISHED transition is a decrement of the old bucket
	// followed by an increment of the new one.
	stats.DecrementPost(StatusDraft)
	stats.IncrementPost(StatusPublished)

	assert.Equal(t, 1, stats.TotalPosts)
	assert.Equal(t, 1, stats.PublishedPosts)
	assert.Equal(t, 0, stats.DraftPosts)
}
