package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"blogstore/infrastructure/migration"
	pkgerrors "blogstore/pkg/errors"
)

// LedgerRepository stores migration attempt records in the
// schema_migrations view. The key is (version, applied_at), so repeated
// attempts at the same version append rather than overwrite.
type LedgerRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) migration.Ledger {
	return &LedgerRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type ledgerItem struct {
	Version         string `dynamodbav:"version"`
	AppliedAt       string `dynamodbav:"applied_at"`
	Description     string `dynamodbav:"description"`
	AppliedBy       string `dynamodbav:"applied_by"`
	Success         bool   `dynamodbav:"success"`
	ErrorMessage    string `dynamodbav:"error_message,omitempty"`
	ExecutionTimeMs int64  `dynamodbav:"execution_time_ms"`
}

// Append writes one attempt record
func (r *LedgerRepository) Append(ctx context.Context, record migration.Record) error {
	av, err := attributevalue.MarshalMap(ledgerItem{
		Version:         record.Version,
		AppliedAt:       timeToAttr(record.AppliedAt),
		Description:     record.Description,
		AppliedBy:       record.AppliedBy,
		Success:         record.Success,
		ErrorMessage:    record.ErrorMessage,
		ExecutionTimeMs: record.ExecutionTimeMs,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal schema_migrations", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to append migration record",
			zap.String("version", record.Version),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError("put schema_migrations", err)
	}

	return nil
}

// Records returns every ledger entry
func (r *LedgerRepository) Records(ctx context.Context) ([]migration.Record, error) {
	records := make([]migration.Record, 0)

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan schema_migrations", err)
		}

		for _, raw := range page.Items {
			var item ledgerItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.NewDatabaseError("unmarshal schema_migrations", err)
			}
			appliedAt, err := attrToTime(item.AppliedAt)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("parse schema_migrations applied_at", err)
			}
			records = append(records, migration.Record{
				Version:         item.Version,
				AppliedAt:       appliedAt,
				Description:     item.Description,
				AppliedBy:       item.AppliedBy,
				Success:         item.Success,
				ErrorMessage:    item.ErrorMessage,
				ExecutionTimeMs: item.ExecutionTimeMs,
			})
		}
	}

	return records, nil
}
