package dynamodb

import (
	"blogstore/domain/model"
	pkgerrors "blogstore/pkg/errors"
)

// postItem is the shared item shape of the three post views. Each view
// adds its own key attributes on top; the logical fields are identical
// by construction, which is what the fanout invariant demands.
type postItem struct {
	PostID    string   `dynamodbav:"post_id"`
	UserID    string   `dynamodbav:"user_id"`
	Title     string   `dynamodbav:"title"`
	Content   string   `dynamodbav:"content"`
	Status    string   `dynamodbav:"status"`
	Tags      []string `dynamodbav:"tags,stringset,omitempty"`
	CreatedAt string   `dynamodbav:"created_at"`
	UpdatedAt string   `dynamodbav:"updated_at"`

	// View sort keys; present only in the views that define them.
	PostKey   string `dynamodbav:"post_key,omitempty"`
	StatusKey string `dynamodbav:"status_key,omitempty"`
}

func newPostItem(post *model.Post) postItem {
	return postItem{
		PostID:    post.PostID,
		UserID:    post.UserID,
		Title:     post.Title,
		Content:   post.Content,
		Status:    post.Status,
		Tags:      post.Tags,
		CreatedAt: timeToAttr(post.CreatedAt),
		UpdatedAt: timeToAttr(post.UpdatedAt),
	}
}

func (i postItem) toPost() (*model.Post, error) {
	createdAt, err := attrToTime(i.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse post created_at", err)
	}
	updatedAt, err := attrToTime(i.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse post updated_at", err)
	}

	return &model.Post{
		PostID:    i.PostID,
		UserID:    i.UserID,
		Title:     i.Title,
		Content:   i.Content,
		Status:    i.Status,
		Tags:      i.Tags,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
