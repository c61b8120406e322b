package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"blogstore/application/ports"
	"blogstore/application/services"
	"blogstore/infrastructure/config"
	"blogstore/infrastructure/migration"
	"blogstore/infrastructure/persistence/dynamodb"
	"blogstore/infrastructure/persistence/memory"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Stores          *Stores
	UserService     *services.UserService
	PostService     *services.PostService
	StatsService    *services.StatsService
	MigrationRunner *migration.Runner
}

// Stores bundles every persistence port behind one driver choice, so
// the rest of the wiring never cares which backend is active.
type Stores struct {
	Users         ports.UserRepository
	UsersByEmail  ports.UserByEmailRepository
	UserStats     ports.UserStatsRepository
	PostsByUser   ports.PostByUserRepository
	PostsByID     ports.PostByIDRepository
	PostsByStatus ports.PostByUserStatusRepository
	Schema        migration.SchemaClient
	Ledger        migration.Ledger
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideStores builds the persistence layer for the configured driver.
func ProvideStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		store := memory.NewStore()
		return &Stores{
			Users:         store.Users(),
			UsersByEmail:  store.UsersByEmail(),
			UserStats:     store.Stats(),
			PostsByUser:   store.PostsByUser(),
			PostsByID:     store.PostsByID(),
			PostsByStatus: store.PostsByStatus(),
			Schema:        store.Schema(),
			Ledger:        store.Ledger(),
		}, nil

	case "dynamodb":
		client, err := provideDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		ns := cfg.TableNamespace
		return &Stores{
			Users:         dynamodb.NewUserRepository(client, dynamodb.QualifiedTable(ns, migration.TableUsers), logger),
			UsersByEmail:  dynamodb.NewUserByEmailRepository(client, dynamodb.QualifiedTable(ns, migration.TableUsersByEmail), logger),
			UserStats:     dynamodb.NewUserStatsRepository(client, dynamodb.QualifiedTable(ns, migration.TableUserStats), logger),
			PostsByUser:   dynamodb.NewPostByUserRepository(client, dynamodb.QualifiedTable(ns, migration.TablePostsByUser), logger),
			PostsByID:     dynamodb.NewPostByIDRepository(client, dynamodb.QualifiedTable(ns, migration.TablePostsByID), logger),
			PostsByStatus: dynamodb.NewPostByUserStatusRepository(client, dynamodb.QualifiedTable(ns, migration.TablePostsByUserStatus), logger),
			Schema:        dynamodb.NewSchemaClient(client, ns, logger),
			Ledger:        dynamodb.NewLedgerRepository(client, dynamodb.QualifiedTable(ns, migration.LedgerTable), logger),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func provideDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

// ProvideAdjustGuard creates the stats adjust guard
func ProvideAdjustGuard() ports.AdjustGuard {
	return services.NewLocalAdjustGuard()
}

// ProvideStatsService creates the stats service
func ProvideStatsService(stores *Stores, guard ports.AdjustGuard, logger *zap.Logger) *services.StatsService {
	return services.NewStatsService(stores.UserStats, guard, logger)
}

// ProvideUserService creates the user service
func ProvideUserService(stores *Stores, logger *zap.Logger) *services.UserService {
	return services.NewUserService(stores.Users, stores.UsersByEmail, stores.UserStats, logger)
}

// ProvidePostService creates the post service
func ProvidePostService(stores *Stores, stats *services.StatsService, logger *zap.Logger) *services.PostService {
	return services.NewPostService(
		stores.Users,
		stores.PostsByUser,
		stores.PostsByID,
		stores.PostsByStatus,
		stats,
		logger,
	)
}

// ProvideMigrationRunner creates the migration runner over the fixed
// migration list
func ProvideMigrationRunner(stores *Stores, cfg *config.Config, logger *zap.Logger) *migration.Runner {
	return migration.NewRunner(
		stores.Schema,
		stores.Ledger,
		migration.Definitions(),
		migration.Options{
			ResetSchema:       cfg.ResetSchema,
			ValidateOnStartup: cfg.ValidateOnStartup,
			AppliedBy:         cfg.MigrationAppliedBy,
		},
		logger,
	)
}
