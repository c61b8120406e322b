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

// UserStatsRepository implements the user_stats view on DynamoDB. Every
// save writes the full row; the last writer wins.
type UserStatsRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserStatsRepository creates a new UserStatsRepository
func NewUserStatsRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserStatsRepository {
	return &UserStatsRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userStatsItem represents the DynamoDB item structure for stats
type userStatsItem struct {
	UserID         string `dynamodbav:"user_id"`
	TotalPosts     int    `dynamodbav:"total_posts"`
	PublishedPosts int    `dynamodbav:"published_posts"`
	DraftPosts     int    `dynamodbav:"draft_posts"`
	LastPostDate   string `dynamodbav:"last_post_date,omitempty"`
	UpdatedAt      string `dynamodbav:"updated_at"`
}

// Save writes the full stats row
func (r *UserStatsRepository) Save(ctx context.Context, stats *model.UserStats) error {
	item := userStatsItem{
		UserID:         stats.UserID,
		TotalPosts:     stats.TotalPosts,
		PublishedPosts: stats.PublishedPosts,
		DraftPosts:     stats.DraftPosts,
		UpdatedAt:      timeToAttr(stats.UpdatedAt),
	}
	if !stats.LastPostDate.IsZero() {
		item.LastPostDate = timeToAttr(stats.LastPostDate)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user_stats", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save user stats",
			zap.String("userID", stats.UserID),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put user_stats", err)
	}

	return nil
}

// FindByUser retrieves stats for a user; a miss is (nil, nil)
func (r *UserStatsRepository) FindByUser(ctx context.Context, userID string) (*model.UserStats, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user_stats", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item userStatsItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user_stats", err)
	}

	lastPost, err := attrToTime(item.LastPostDate)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse user_stats last_post_date", err)
	}
	updatedAt, err := attrToTime(item.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse user_stats updated_at", err)
	}

	return &model.UserStats{
		UserID:         item.UserID,
		TotalPosts:     item.TotalPosts,
		PublishedPosts: item.PublishedPosts,
		DraftPosts:     item.DraftPosts,
		LastPostDate:   lastPost,
		UpdatedAt:      updatedAt,
	}, nil
}
