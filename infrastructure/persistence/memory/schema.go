package memory

import (
	"context"
	"sort"

	"blogstore/domain/model"
	"blogstore/infrastructure/migration"
	pkgerrors "blogstore/pkg/errors"
)

// SchemaClient implements schema definition against the in-memory
// store. Views are names in a map; the data maps are fixed, so creating
// a view only registers it for ListTables and validation.
type SchemaClient struct {
	store *Store
}

// EnsureNamespace makes sure the target namespace exists
func (c *SchemaClient) EnsureNamespace(ctx context.Context) error {
	return nil
}

// DropNamespace drops every view in the namespace and clears all data
func (c *SchemaClient) DropNamespace(ctx context.Context) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]tableState)
	s.users = make(map[string]*model.User)
	s.usersByEmail = make(map[string]*model.UserByEmail)
	s.stats = make(map[string]*model.UserStats)
	s.postsByUser = make(map[string]map[string]*model.Post)
	s.postsByID = make(map[string]*model.Post)
	s.postsByStatus = make(map[string]map[string]*model.Post)
	s.records = nil
	return nil
}

// EnsureTable creates a view if absent
func (c *SchemaClient) EnsureTable(ctx context.Context, spec migration.TableSpec) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[spec.Name]; ok {
		return nil
	}
	s.tables[spec.Name] = tableState{
		spec:    spec,
		indexes: make(map[string]migration.IndexSpec),
	}
	return nil
}

// EnsureIndex creates a secondary index if absent
func (c *SchemaClient) EnsureIndex(ctx context.Context, spec migration.IndexSpec) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables[spec.Table]
	if !ok {
		return pkgerrors.NewNotFoundError("table " + spec.Table)
	}
	table.indexes[spec.Name] = spec
	return nil
}

// ListTables returns the views currently in the namespace
func (c *SchemaClient) ListTables(ctx context.Context) ([]string, error) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ledger is the in-memory migration ledger.
type Ledger struct {
	store *Store
}

// Append writes one attempt record
func (l *Ledger) Append(ctx context.Context, record migration.Record) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.records = append(l.store.records, record)
	return nil
}

// Records returns every ledger entry
func (l *Ledger) Records(ctx context.Context) ([]migration.Record, error) {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()
	out := make([]migration.Record, len(l.store.records))
	copy(out, l.store.records)
	return out, nil
}
