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

// UserByEmailRepository implements the users_by_email reverse-lookup
// view on DynamoDB.
type UserByEmailRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserByEmailRepository creates a new UserByEmailRepository
func NewUserByEmailRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserByEmailRepository {
	return &UserByEmailRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userByEmailItem represents the DynamoDB item structure for an email row
type userByEmailItem struct {
	Email     string `dynamodbav:"email"`
	UserID    string `dynamodbav:"user_id"`
	Name      string `dynamodbav:"name"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// Save persists an email row (same key overwrites in place)
func (r *UserByEmailRepository) Save(ctx context.Context, row *model.UserByEmail) error {
	item := userByEmailItem{
		Email:     row.Email,
		UserID:    row.UserID,
		Name:      row.Name,
		CreatedAt: timeToAttr(row.CreatedAt),
		UpdatedAt: timeToAttr(row.UpdatedAt),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal users_by_email", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save email row",
			zap.String("email", row.Email),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put users_by_email", err)
	}

	return nil
}

// FindByEmail retrieves the row for an email; a miss is (nil, nil)
func (r *UserByEmailRepository) FindByEmail(ctx context.Context, email string) (*model.UserByEmail, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get users_by_email", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item userByEmailItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal users_by_email", err)
	}

	createdAt, err := attrToTime(item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse users_by_email created_at", err)
	}
	updatedAt, err := attrToTime(item.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("parse users_by_email updated_at", err)
	}

	return &model.UserByEmail{
		Email:     item.Email,
		UserID:    item.UserID,
		Name:      item.Name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Delete removes the row for an email
func (r *UserByEmailRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
	}); err != nil {
		return pkgerrors.NewDatabaseError("delete users_by_email", err)
	}
	return nil
}
