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

// PostByUserRepository implements the posts_by_user view on DynamoDB.
// The sort key encodes (createdAt DESC, postId ASC), so a plain
// ascending query walks the partition newest-first.
type PostByUserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewPostByUserRepository creates a new PostByUserRepository
func NewPostByUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.PostByUserRepository {
	return &PostByUserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Save persists the post's row in posts_by_user
func (r *PostByUserRepository) Save(ctx context.Context, post *model.Post) error {
	item := newPostItem(post)
	item.PostKey = postSortKey(post.CreatedAt, post.PostID)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal posts_by_user", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save post to posts_by_user",
			zap.String("postID", post.PostID),
			zap.String("userID", post.UserID),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put posts_by_user", err)
	}

	return nil
}

// Delete removes a row by its composite key
func (r *PostByUserRepository) Delete(ctx context.Context, key model.PostByUserKey) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id":  &types.AttributeValueMemberS{Value: key.UserID},
			"post_key": &types.AttributeValueMemberS{Value: postSortKey(key.CreatedAt, key.PostID)},
		},
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete posts_by_user", err)
	}
	return nil
}

// FindByUser scans a user's partition newest-first; limit <= 0 means
// the whole partition.
func (r *PostByUserRepository) FindByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("user_id").Equal(expression.Value(userID))).
		Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build posts_by_user query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	posts := make([]*model.Post, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query posts_by_user", err)
		}

		for _, raw := range page.Items {
			var item postItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal posts_by_user", err)
			}
			post, err := item.toPost()
			if err != nil {
				return nil, err
			}
			posts = append(posts, post)
			if limit > 0 && len(posts) >= limit {
				return posts, nil
			}
		}
	}

	return posts, nil
}
