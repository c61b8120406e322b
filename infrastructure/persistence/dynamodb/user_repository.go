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

// UserRepository implements the users view on DynamoDB.
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	ID        string `dynamodbav:"id"`
	Name      string `dynamodbav:"name"`
	Email     string `dynamodbav:"email"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// Save persists a user to the users view
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	item := userItem{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: timeToAttr(user.CreatedAt),
		UpdatedAt: timeToAttr(user.UpdatedAt),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save user",
			zap.String("userID", user.ID),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put users", err)
	}

	return nil
}

// FindByID retrieves a user by id; a miss is (nil, nil)
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get users", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return item.toUser()
}

func (i userItem) toUser() (*model.User, error) {
	createdAt, err := attrToTime(i.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse user created_at", err)
	}
	updatedAt, err := attrToTime(i.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse user updated_at", err)
	}

	return &model.User{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
