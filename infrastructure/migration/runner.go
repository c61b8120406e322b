package migration

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	pkgerrors "blogstore/pkg/errors"
)

// Options tune one runner instance.
type Options struct {
	// ResetSchema drops every view before migrating. Development only.
	ResetSchema bool

	// ValidateOnStartup re-checks the ledger against the loaded list
	// after a run: a version expected but never applied is fatal, an
	// applied version the build does not know is a warning.
	ValidateOnStartup bool

	// AppliedBy is recorded on every ledger entry. Defaults to the
	// hostname.
	AppliedBy string
}

// Runner applies a fixed, ordered migration list against the store. The
// list is handed in at construction and never changes afterwards.
type Runner struct {
	schema     SchemaClient
	ledger     Ledger
	migrations []Migration
	opts       Options
	logger     *zap.Logger
}

// NewRunner creates a runner over an immutable, version-sorted copy of
// the given migrations.
func NewRunner(schema SchemaClient, ledger Ledger, migrations []Migration, opts Options, logger *zap.Logger) *Runner {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	if opts.AppliedBy == "" {
		if host, err := os.Hostname(); err == nil {
			opts.AppliedBy = host
		} else {
			opts.AppliedBy = "unknown"
		}
	}

	return &Runner{
		schema:     schema,
		ledger:     ledger,
		migrations: sorted,
		opts:       opts,
		logger:     logger,
	}
}

// Run executes the full startup sequence: ensure the namespace, optional
// destructive reset, ensure the ledger view, apply pending migrations in
// version order, optional validation. Any failure is fatal to startup.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Starting schema migration run",
		zap.Int("migrations", len(r.migrations)),
		zap.Bool("resetSchema", r.opts.ResetSchema),
	)

	if err := r.checkVersions(); err != nil {
		return err
	}

	if err := r.schema.EnsureNamespace(ctx); err != nil {
		return pkgerrors.NewMigrationError("namespace", err)
	}

	if r.opts.ResetSchema {
		r.logger.Warn("RESETTING SCHEMA - dropping all views; development use only")
		if err := r.schema.DropNamespace(ctx); err != nil {
			return pkgerrors.NewMigrationError("reset", err)
		}
	}

	if err := r.schema.EnsureTable(ctx, LedgerTableSpec()); err != nil {
		return pkgerrors.NewMigrationError("ledger", err)
	}

	if err := r.ApplyPending(ctx); err != nil {
		return err
	}

	if r.opts.ValidateOnStartup {
		if err := r.Validate(ctx); err != nil {
			return err
		}
	}

	r.logger.Info("Schema migration run completed")
	return nil
}

// ApplyPending applies, strictly in version order, every migration
// without a successful ledger entry, stopping at the first failure. One
// ledger record is written per attempt, success or not.
func (r *Runner) ApplyPending(ctx context.Context) error {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return pkgerrors.NewMigrationError("ledger", err)
	}

	pending := 0
	for _, m := range r.migrations {
		if applied[m.Version] {
			continue
		}
		pending++
		if err := r.applyOne(ctx, m); err != nil {
			return err
		}
	}

	if pending == 0 {
		r.logger.Info("No pending migrations")
	}
	return nil
}

// Validate re-derives the expected version set from the loaded list and
// the applied set from the ledger. Missing versions are fatal;
// unexpected ones (say, from a newer build) only warn.
func (r *Runner) Validate(ctx context.Context) error {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return pkgerrors.NewMigrationError("validate", err)
	}

	expected := make(map[string]bool, len(r.migrations))
	for _, m := range r.migrations {
		expected[m.Version] = true
		if !applied[m.Version] {
			return pkgerrors.NewMigrationError(m.Version,
				fmt.Errorf("validation failed: version %s expected but not applied", m.Version))
		}
	}

	for version := range applied {
		if !expected[version] {
			r.logger.Warn("Ledger contains unexpected migration version",
				zap.String("version", version),
			)
		}
	}
	return nil
}

// Status reports every known migration with its applied flag, for the
// admin surface.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	applied, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, pkgerrors.NewMigrationError("status", err)
	}

	statuses := make([]Status, 0, len(r.migrations))
	for _, m := range r.migrations {
		statuses = append(statuses, Status{
			Version:     m.Version,
			Description: m.Description,
			Applied:     applied[m.Version],
		})
	}
	return statuses, nil
}

// applyOne runs a migration's statements in order and appends exactly one
// ledger record for the attempt. A failed statement leaves the earlier
// statements' work in place; the migration as a whole is recorded failed.
func (r *Runner) applyOne(ctx context.Context, m Migration) error {
	r.logger.Info("Applying migration",
		zap.String("version", m.Version),
		zap.String("description", m.Description),
	)

	start := time.Now()
	var stmtErr error
	for _, stmt := range m.Statements {
		if err := stmt.Run(ctx, r.schema); err != nil {
			stmtErr = fmt.Errorf("%s: %w", stmt.Description, err)
			break
		}
	}

	record := Record{
		Version:         m.Version,
		Description:     m.Description,
		AppliedAt:       time.Now().UTC(),
		AppliedBy:       r.opts.AppliedBy,
		Success:         stmtErr == nil,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
	if stmtErr != nil {
		record.ErrorMessage = stmtErr.Error()
	}

	if err := r.ledger.Append(ctx, record); err != nil {
		r.logger.Error("Failed to write migration ledger record",
			zap.String("version", m.Version),
			zap.Error(err),
		)
		if stmtErr == nil {
			return pkgerrors.NewMigrationError(m.Version, err)
		}
	}

	if stmtErr != nil {
		r.logger.Error("Migration failed",
			zap.String("version", m.Version),
			zap.Error(stmtErr),
		)
		return pkgerrors.NewMigrationError(m.Version, stmtErr)
	}

	r.logger.Info("Migration applied",
		zap.String("version", m.Version),
		zap.Int64("executionTimeMs", record.ExecutionTimeMs),
	)
	return nil
}

// appliedVersions collects the versions with at least one successful
// ledger record.
func (r *Runner) appliedVersions(ctx context.Context) (map[string]bool, error) {
	records, err := r.ledger.Records(ctx)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool)
	for _, rec := range records {
		if rec.Success {
			applied[rec.Version] = true
		}
	}
	return applied, nil
}

// checkVersions rejects duplicate versions up front; the version string
// is the sole ordering and identity of a migration.
func (r *Runner) checkVersions() error {
	seen := make(map[string]bool, len(r.migrations))
	for _, m := range r.migrations {
		if seen[m.Version] {
			return pkgerrors.NewMigrationError(m.Version,
				fmt.Errorf("duplicate migration version"))
		}
		seen[m.Version] = true
	}
	return nil
}
