package dynamodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"blogstore/infrastructure/migration"
	pkgerrors "blogstore/pkg/errors"
)

const (
	tableWaitTimeout  = 2 * time.Minute
	indexPollInterval = 2 * time.Second
)

// SchemaClient implements schema definition on DynamoDB. The namespace
// is a table-name prefix: every view lives in a shared account-level
// table space, qualified as "<namespace>_<view>".
type SchemaClient struct {
	client    *dynamodb.Client
	namespace string
	logger    *zap.Logger
}

// NewSchemaClient creates a new SchemaClient
func NewSchemaClient(client *dynamodb.Client, namespace string, logger *zap.Logger) migration.SchemaClient {
	return &SchemaClient{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// EnsureNamespace is a no-op: the namespace is a naming convention, not
// a store object.
func (c *SchemaClient) EnsureNamespace(ctx context.Context) error {
	c.logger.Debug("Using table namespace", zap.String("namespace", c.namespace))
	return nil
}

// DropNamespace deletes every view whose name carries the namespace
// prefix. Development-only.
func (c *SchemaClient) DropNamespace(ctx context.Context) error {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return err
	}

	for _, table := range tables {
		name := QualifiedTable(c.namespace, table)
		c.logger.Warn("Dropping table", zap.String("table", name))
		if _, err := c.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
			TableName: aws.String(name),
		}); err != nil {
			return pkgerrors.NewDatabaseError("delete table "+name, err)
		}

		waiter := dynamodb.NewTableNotExistsWaiter(c.client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(name),
		}, tableWaitTimeout); err != nil {
			return pkgerrors.NewDatabaseError("wait for table delete "+name, err)
		}
	}

	return nil
}

// EnsureTable creates the view if absent and waits until it is ACTIVE.
func (c *SchemaClient) EnsureTable(ctx context.Context, spec migration.TableSpec) error {
	name := QualifiedTable(c.namespace, spec.Name)

	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return pkgerrors.NewDatabaseError("describe table "+name, err)
	}

	attrs := []types.AttributeDefinition{{
		AttributeName: aws.String(spec.PartitionKey.Name),
		AttributeType: types.ScalarAttributeType(spec.PartitionKey.Type),
	}}
	schema := []types.KeySchemaElement{{
		AttributeName: aws.String(spec.PartitionKey.Name),
		KeyType:       types.KeyTypeHash,
	}}
	if spec.SortKey != nil {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(spec.SortKey.Name),
			AttributeType: types.ScalarAttributeType(spec.SortKey.Type),
		})
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(spec.SortKey.Name),
			KeyType:       types.KeyTypeRange,
		})
	}

	c.logger.Info("Creating table", zap.String("table", name))
	if _, err := c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		AttributeDefinitions: attrs,
		KeySchema:            schema,
		BillingMode:          types.BillingModePayPerRequest,
	}); err != nil {
		return pkgerrors.NewDatabaseError("create table "+name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(c.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	}, tableWaitTimeout); err != nil {
		return pkgerrors.NewDatabaseError("wait for table create "+name, err)
	}

	return nil
}

// EnsureIndex creates a global secondary index if absent and waits
// until it is ACTIVE.
func (c *SchemaClient) EnsureIndex(ctx context.Context, spec migration.IndexSpec) error {
	name := QualifiedTable(c.namespace, spec.Table)

	out, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("describe table "+name, err)
	}
	for _, gsi := range out.Table.GlobalSecondaryIndexes {
		if aws.ToString(gsi.IndexName) == spec.Name {
			return nil
		}
	}

	c.logger.Info("Creating index",
		zap.String("table", name),
		zap.String("index", spec.Name),
	)
	if _, err := c.client.UpdateTable(ctx, &dynamodb.UpdateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []types.AttributeDefinition{{
			AttributeName: aws.String(spec.PartitionKey.Name),
			AttributeType: types.ScalarAttributeType(spec.PartitionKey.Type),
		}},
		GlobalSecondaryIndexUpdates: []types.GlobalSecondaryIndexUpdate{{
			Create: &types.CreateGlobalSecondaryIndexAction{
				IndexName: aws.String(spec.Name),
				KeySchema: []types.KeySchemaElement{{
					AttributeName: aws.String(spec.PartitionKey.Name),
					KeyType:       types.KeyTypeHash,
				}},
				Projection: &types.Projection{
					ProjectionType: types.ProjectionTypeAll,
				},
			},
		}},
	}); err != nil {
		return pkgerrors.NewDatabaseError("create index "+spec.Name+" on "+name, err)
	}

	return c.waitForIndex(ctx, name, spec.Name)
}

func (c *SchemaClient) waitForIndex(ctx context.Context, table, index string) error {
	deadline := time.Now().Add(tableWaitTimeout)
	for {
		out, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("describe table "+table, err)
		}
		for _, gsi := range out.Table.GlobalSecondaryIndexes {
			if aws.ToString(gsi.IndexName) == index && gsi.IndexStatus == types.IndexStatusActive {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return pkgerrors.NewDatabaseError("wait for index "+index+" on "+table,
				errors.New("index did not become active in time"))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(indexPollInterval):
		}
	}
}

// ListTables returns the logical (prefix-stripped) view names in the
// namespace.
func (c *SchemaClient) ListTables(ctx context.Context) ([]string, error) {
	prefix := QualifiedTable(c.namespace, "")

	names := make([]string, 0)
	paginator := dynamodb.NewListTablesPaginator(c.client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list tables", err)
		}
		for _, name := range page.TableNames {
			if prefix == "" || strings.HasPrefix(name, prefix) {
				names = append(names, strings.TrimPrefix(name, prefix))
			}
		}
	}

	return names, nil
}
