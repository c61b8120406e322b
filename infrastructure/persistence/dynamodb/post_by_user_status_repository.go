package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"blogstore/application/ports"
	"blogstore/domain/model"
	pkgerrors "blogstore/pkg/errors"
)

// PostByUserStatusRepository implements the posts_by_user_status view
// on DynamoDB. The sort key is status#invertedTimestamp#postID, so a
// begins_with(status#) query yields one status bucket newest-first.
type PostByUserStatusRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewPostByUserStatusRepository creates a new PostByUserStatusRepository
func NewPostByUserStatusRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.PostByUserStatusRepository {
	return &PostByUserStatusRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save persists the post's row under its current status
func (r *PostByUserStatusRepository) Save(ctx context.Context, post *model.Post) error {
	item := newPostItem(post)
	item.StatusKey = statusSortKey(post.Status, post.CreatedAt, post.PostID)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal posts_by_user_status", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save post to posts_by_user_status",
			zap.String("postID", post.PostID),
			zap.String("userID", post.UserID),
			zap.String("status", post.Status),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put posts_by_user_status", err)
	}

	return nil
}

// Delete removes the row keyed by (userID, status, createdAt, postID).
// A status change deletes the old status row and writes a new one; the
// key carries the status the row was written under, not the post's
// current status.
func (r *PostByUserStatusRepository) Delete(ctx context.Context, key model.PostByUserStatusKey) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id":    &types.AttributeValueMemberS{Value: key.UserID},
			"status_key": &types.AttributeValueMemberS{Value: statusSortKey(key.Status, key.CreatedAt, key.PostID)},
		},
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete posts_by_user_status", err)
	}
	return nil
}

// FindByUserAndStatus returns one status bucket newest-first
func (r *PostByUserStatusRepository) FindByUserAndStatus(ctx context.Context, userID, status string) ([]*model.Post, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(
			expression.Key("user_id").Equal(expression.Value(userID)).
				And(expression.Key("status_key").BeginsWith(statusKeyPrefix(status))),
		).
		Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build posts_by_user_status query", err)
	}

	posts := make([]*model.Post, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query posts_by_user_status", err)
		}

		for _, raw := range page.Items {
			var item postItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal posts_by_user_status", err)
			}
			post, err := item.toPost()
			if err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}

	return posts, nil
}
