package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"blogstore/application/ports"
	"blogstore/domain/model"
	pkgerrors "blogstore/pkg/errors"
)

// PostByIDRepository implements the posts_by_id view on DynamoDB.
type PostByIDRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewPostByIDRepository creates a new PostByIDRepository
func NewPostByIDRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.PostByIDRepository {
	return &PostByIDRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save persists the post's row in posts_by_id
func (r *PostByIDRepository) Save(ctx context.Context, post *model.Post) error {
	av, err := attributevalue.MarshalMap(newPostItem(post))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal posts_by_id", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save post to posts_by_id",
			zap.String("postID", post.PostID),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put posts_by_id", err)
	}

	return nil
}

// Delete removes the row keyed by postID
func (r *PostByIDRepository) Delete(ctx context.Context, postID string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"post_id": &types.AttributeValueMemberS{Value: postID},
		},
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete posts_by_id", err)
	}
	return nil
}

// FindByID returns the post, or nil when it does not exist
func (r *PostByIDRepository) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"post_id": &types.AttributeValueMemberS{Value: postID},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get posts_by_id", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item postItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal posts_by_id", err)
	}
	return item.toPost()
}
