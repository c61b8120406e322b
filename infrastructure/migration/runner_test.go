package migration_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogstore/infrastructure/migration"
	"blogstore/infrastructure/persistence/memory"
	pkgerrors "blogstore/pkg/errors"
	"blogstore/tests/mocks"
)

func testMigrations() []migration.Migration {
	return []migration.Migration{
		{
			Version:     "V001",
			Description: "Create alpha table",
			Statements: []migration.Statement{
				migration.EnsureTableStatement(migration.TableSpec{
					Name:         "alpha",
					PartitionKey: migration.KeyAttribute{Name: "id", Type: "S"},
				}),
			},
		},
		{
			Version:     "V002",
			Description: "Create beta table",
			Statements: []migration.Statement{
				migration.EnsureTableStatement(migration.TableSpec{
					Name:         "beta",
					PartitionKey: migration.KeyAttribute{Name: "id", Type: "S"},
				}),
			},
		},
	}
}

func newMemoryRunner(migrations []migration.Migration, opts migration.Options) (*migration.Runner, *memory.Store) {
	store := memory.NewStore()
	runner := migration.NewRunner(store.Schema(), store.Ledger(), migrations, opts, zap.NewNop())
	return runner, store
}

func TestRun_AppliesAllMigrations(t *testing.T) {
	ctx := context.Background()
	runner, store := newMemoryRunner(testMigrations(), migration.Options{ValidateOnStartup: true})

	require.NoError(t, runner.Run(ctx))

	tables, err := store.Schema().ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "alpha")
	assert.Contains(t, tables, "beta")
	assert.Contains(t, tables, migration.LedgerTable)

	records, err := store.Ledger().Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.True(t, rec.Success)
		assert.NotEmpty(t, rec.AppliedBy)
		assert.False(t, rec.AppliedAt.IsZero())
	}
}

func TestRun_SecondRunIsANoOp(t *testing.T) {
	ctx := context.Background()
	runner, store := newMemoryRunner(testMigrations(), migration.Options{})

	require.NoError(t, runner.Run(ctx))
	require.NoError(t, runner.Run(ctx))

	records, err := store.Ledger().Records(ctx)
	require.NoError(t, err)

	perVersion := make(map[string]int)
	for _, rec := range records {
		perVersion[rec.Version]++
	}
	assert.Equal(t, 1, perVersion["V001"])
	assert.Equal(t, 1, perVersion["V002"])
}

func TestApplyPending_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	schema := new(mocks.MockSchemaClient)
	boom := errors.New("table create rejected")

	schema.On("EnsureTable", ctx, mock.MatchedBy(func(spec migration.TableSpec) bool {
		return spec.Name == "alpha"
	})).Return(nil)
	schema.On("EnsureTable", ctx, mock.MatchedBy(func(spec migration.TableSpec) bool {
		return spec.Name == "beta"
	})).Return(boom)

	migrations := append(testMigrations(), migration.Migration{
		Version:     "V003",
		Description: "Never reached",
		Statements: []migration.Statement{
			migration.EnsureTableStatement(migration.TableSpec{
				Name:         "gamma",
				PartitionKey: migration.KeyAttribute{Name: "id", Type: "S"},
			}),
		},
	})

	runner := migration.NewRunner(schema, store.Ledger(), migrations, migration.Options{}, zap.NewNop())

	err := runner.ApplyPending(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMigration(err))

	records, recErr := store.Ledger().Records(ctx)
	require.NoError(t, recErr)
	require.Len(t, records, 2)

	byVersion := make(map[string]migration.Record)
	for _, rec := range records {
		byVersion[rec.Version] = rec
	}
	assert.True(t, byVersion["V001"].Success)
	assert.False(t, byVersion["V002"].Success)
	assert.Contains(t, byVersion["V002"].ErrorMessage, "table create rejected")
	_, attempted := byVersion["V003"]
	assert.False(t, attempted)
}

func TestApplyPending_RetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	schema := new(mocks.MockSchemaClient)
	boom := errors.New("transient failure")

	schema.On("EnsureTable", ctx, mock.MatchedBy(func(spec migration.TableSpec) bool {
		return spec.Name == "alpha"
	})).Return(nil)
	schema.On("EnsureTable", ctx, mock.MatchedBy(func(spec migration.TableSpec) bool {
		return spec.Name == "beta"
	})).Return(boom).Once()
	schema.On("EnsureTable", ctx, mock.MatchedBy(func(spec migration.TableSpec) bool {
		return spec.Name == "beta"
	})).Return(nil)

	runner := migration.NewRunner(schema, store.Ledger(), testMigrations(), migration.Options{}, zap.NewNop())

	require.Error(t, runner.ApplyPending(ctx))
	require.NoError(t, runner.ApplyPending(ctx))

	records, err := store.Ledger().Records(ctx)
	require.NoError(t, err)

	// V001 applied once, V002 recorded twice: one failed attempt and one
	// success.
	attempts := make(map[string]int)
	successes := make(map[string]int)
	for _, rec := range records {
		attempts[rec.Version]++
		if rec.Success {
			successes[rec.Version]++
		}
	}
	assert.Equal(t, 1, attempts["V001"])
	assert.Equal(t, 2, attempts["V002"])
	assert.Equal(t, 1, successes["V002"])
}

func TestValidate_MissingVersionIsFatal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := migration.NewRunner(store.Schema(), store.Ledger(), testMigrations(), migration.Options{}, zap.NewNop())

	// Only V001 has a successful record.
	require.NoError(t, store.Ledger().Append(ctx, migration.Record{Version: "V001", Success: true}))

	err := runner.Validate(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMigration(err))
}

func TestValidate_UnexpectedVersionOnlyWarns(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := migration.NewRunner(store.Schema(), store.Ledger(), testMigrations(), migration.Options{}, zap.NewNop())

	require.NoError(t, runner.ApplyPending(ctx))
	require.NoError(t, store.Ledger().Append(ctx, migration.Record{Version: "V999", Success: true}))

	assert.NoError(t, runner.Validate(ctx))
}

func TestRun_DuplicateVersionsRejected(t *testing.T) {
	migrations := testMigrations()
	migrations[1].Version = "V001"
	runner, _ := newMemoryRunner(migrations, migration.Options{})

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMigration(err))
}

func TestRun_ResetSchemaStartsClean(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	first := migration.NewRunner(store.Schema(), store.Ledger(), testMigrations(), migration.Options{}, zap.NewNop())
	require.NoError(t, first.Run(ctx))

	reset := migration.NewRunner(store.Schema(), store.Ledger(), testMigrations(), migration.Options{ResetSchema: true}, zap.NewNop())
	require.NoError(t, reset.Run(ctx))

	records, err := store.Ledger().Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestStatus_ReportsAppliedFlagPerVersion(t *testing.T) {
	ctx := context.Background()
	runner, store := newMemoryRunner(testMigrations(), migration.Options{})

	require.NoError(t, store.Ledger().Append(ctx, migration.Record{Version: "V001", Success: true}))

	statuses, err := runner.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "V001", statuses[0].Version)
	assert.True(t, statuses[0].Applied)
	assert.Equal(t, "V002", statuses[1].Version)
	assert.False(t, statuses[1].Applied)
}

func TestNewRunner_SortsMigrationsByVersion(t *testing.T) {
	migrations := testMigrations()
	migrations[0], migrations[1] = migrations[1], migrations[0]
	runner, _ := newMemoryRunner(migrations, migration.Options{})

	statuses, err := runner.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "V001", statuses[0].Version)
	assert.Equal(t, "V002", statuses[1].Version)
}

func TestDefinitions_CreateEveryView(t *testing.T) {
	ctx := context.Background()
	runner, store := newMemoryRunner(migration.Definitions(), migration.Options{ValidateOnStartup: true})

	require.NoError(t, runner.Run(ctx))

	tables, err := store.Schema().ListTables(ctx)
	require.NoError(t, err)
	for _, name := range []string{
		migration.TableUsers,
		migration.TableUsersByEmail,
		migration.TableUserStats,
		migration.TablePostsByID,
		migration.TablePostsByUser,
		migration.TablePostsByUserStatus,
	} {
		assert.Contains(t, tables, name)
	}
}
