package model

import (
	"time"

	"github.com/google/uuid"

	pkgerrors "blogstore/pkg/errors"
)

// Post statuses with stats semantics. The status vocabulary is otherwise
// open: any caller-supplied string is stored as-is.
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
)

// Post is the logical post entity. It is materialized into three views
// (posts_by_user, posts_by_id, posts_by_user_status) that must carry
// identical field values after every successful fanout.
type Post struct {
	PostID    string
	UserID    string
	Title     string
	Content   string
	Status    string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostByUserKey addresses a row in the posts_by_user view.
// CreatedAt is a clustering component: it is fixed at creation and must be
// taken from the stored row when rebuilding a key, never recomputed.
type PostByUserKey struct {
	UserID    string
	CreatedAt time.Time
	PostID    string
}

// PostByUserStatusKey addresses a row in the posts_by_user_status view.
type PostByUserStatusKey struct {
	UserID    string
	Status    string
	CreatedAt time.Time
	PostID    string
}

// NewPost creates a post with a fresh identity and a single creation
// timestamp shared by all three views.
func NewPost(userID, title, content, status string, tags []string) (*Post, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if title == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if status == "" {
		status = StatusDraft
	}

	now := time.Now().UTC()
	return &Post{
		PostID:    uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Status:    status,
		Tags:      normalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// PostUpdate carries a partial update; nil fields are left untouched.
type PostUpdate struct {
	Title   *string
	Content *string
	Status  *string
	Tags    *[]string
}

// Apply merges the non-nil fields into the post and bumps UpdatedAt.
// CreatedAt is never touched.
func (p *Post) Apply(u PostUpdate) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Tags != nil {
		p.Tags = normalizeTags(*u.Tags)
	}
	p.UpdatedAt = time.Now().UTC()
}

// ByUserKey returns the post's composite key in the posts_by_user view.
func (p *Post) ByUserKey() PostByUserKey {
	return PostByUserKey{UserID: p.UserID, CreatedAt: p.CreatedAt, PostID: p.PostID}
}

// StatusKey returns the post's composite key in the posts_by_user_status
// view for the given status. The status view key embeds the status, so a
// status change is a delete under the old key plus an insert under the new.
func (p *Post) StatusKey(status string) PostByUserStatusKey {
	return PostByUserStatusKey{UserID: p.UserID, Status: status, CreatedAt: p.CreatedAt, PostID: p.PostID}
}

// Clone returns a deep copy so view writes never share tag slices.
func (p *Post) Clone() *Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

// normalizeTags deduplicates while keeping the set semantics of the
// tags column; ordering is not preserved by the store either way.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
