// Package migration applies versioned, idempotent view-creation steps at
// process startup and keeps an append-only ledger of every attempt. A
// version counts as applied once at least one successful ledger record
// exists for it; failed attempts stay in the ledger and the version is
// retried on the next run.
package migration

import (
	"context"
	"time"
)

// LedgerTable is the logical name of the applied-migrations ledger view.
const LedgerTable = "schema_migrations"

// KeyAttribute describes one key column of a view.
type KeyAttribute struct {
	Name string
	Type string // "S" or "N", mirroring the store's scalar key types
}

// TableSpec declares a view: a partition key and an optional sort key
// whose encoding carries the clustering order.
type TableSpec struct {
	Name         string
	PartitionKey KeyAttribute
	SortKey      *KeyAttribute
}

// IndexSpec declares a secondary index on an existing view.
type IndexSpec struct {
	Table        string
	Name         string
	PartitionKey KeyAttribute
}

// SchemaClient is the raw schema-definition primitive the runner drives.
// Every operation is idempotent: ensuring something that already exists
// is a no-op.
type SchemaClient interface {
	// EnsureNamespace makes sure the target namespace exists
	EnsureNamespace(ctx context.Context) error

	// DropNamespace drops every view in the namespace. Development-only.
	DropNamespace(ctx context.Context) error

	// EnsureTable creates a view if absent and waits until it is usable
	EnsureTable(ctx context.Context, spec TableSpec) error

	// EnsureIndex creates a secondary index if absent
	EnsureIndex(ctx context.Context, spec IndexSpec) error

	// ListTables returns the views currently in the namespace
	ListTables(ctx context.Context) ([]string, error)
}

// Statement is one idempotent schema-definition step within a migration.
// Statements run in list order; there is no partial-migration rollback.
type Statement struct {
	Description string
	Run         func(ctx context.Context, schema SchemaClient) error
}

// Migration is one versioned unit of schema work. Versions are
// fixed-width ("V001") so lexicographic order is application order.
type Migration struct {
	Version     string
	Description string
	Statements  []Statement
}

// Record is one ledger entry. Entries are append-only per attempt; a
// retry adds a new record rather than overwriting.
type Record struct {
	Version         string
	Description     string
	AppliedAt       time.Time
	AppliedBy       string
	Success         bool
	ErrorMessage    string
	ExecutionTimeMs int64
}

// Ledger persists migration records.
type Ledger interface {
	// Append writes one attempt record
	Append(ctx context.Context, record Record) error

	// Records returns every ledger entry
	Records(ctx context.Context) ([]Record, error)
}

// Status describes one known migration for the admin surface.
type Status struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// EnsureTableStatement builds the common create-view-if-absent statement.
func EnsureTableStatement(spec TableSpec) Statement {
	return Statement{
		Description: "create table " + spec.Name,
		Run: func(ctx context.Context, schema SchemaClient) error {
			return schema.EnsureTable(ctx, spec)
		},
	}
}

// EnsureIndexStatement builds the create-index-if-absent statement.
func EnsureIndexStatement(spec IndexSpec) Statement {
	return Statement{
		Description: "create index " + spec.Name + " on " + spec.Table,
		Run: func(ctx context.Context, schema SchemaClient) error {
			return schema.EnsureIndex(ctx, spec)
		},
	}
}
