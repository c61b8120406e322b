package migration

// View names. The schema client maps them into the configured namespace.
const (
	TableUsers             = "users"
	TableUsersByEmail      = "users_by_email"
	TableUserStats         = "user_stats"
	TablePostsByID         = "posts_by_id"
	TablePostsByUser       = "posts_by_user"
	TablePostsByUserStatus = "posts_by_user_status"
)

// Sort-key attribute names. The clustering order lives in the key
// encoding (see the dynamodb key helpers), not in the schema.
const (
	AttrPostKey   = "post_key"   // posts_by_user: createdAt DESC, postId ASC
	AttrStatusKey = "status_key" // posts_by_user_status: status ASC, createdAt DESC, postId ASC
)

// Definitions returns the fixed, ordered migration list. The slice is
// rebuilt on every call so callers cannot mutate shared state; the
// runner receives it at construction and never registers anything else.
func Definitions() []Migration {
	return []Migration{
		{
			Version:     "V001",
			Description: "Create users and users_by_email tables",
			Statements: []Statement{
				EnsureTableStatement(TableSpec{
					Name:         TableUsers,
					PartitionKey: KeyAttribute{Name: "id", Type: "S"},
				}),
				EnsureTableStatement(TableSpec{
					Name:         TableUsersByEmail,
					PartitionKey: KeyAttribute{Name: "email", Type: "S"},
				}),
			},
		},
		{
			Version:     "V002",
			Description: "Create user_stats table",
			Statements: []Statement{
				EnsureTableStatement(TableSpec{
					Name:         TableUserStats,
					PartitionKey: KeyAttribute{Name: "user_id", Type: "S"},
				}),
			},
		},
		{
			Version:     "V003",
			Description: "Create post tables",
			Statements: []Statement{
				EnsureTableStatement(TableSpec{
					Name:         TablePostsByID,
					PartitionKey: KeyAttribute{Name: "post_id", Type: "S"},
				}),
				EnsureTableStatement(TableSpec{
					Name:         TablePostsByUser,
					PartitionKey: KeyAttribute{Name: "user_id", Type: "S"},
					SortKey:      &KeyAttribute{Name: AttrPostKey, Type: "S"},
				}),
				EnsureTableStatement(TableSpec{
					Name:         TablePostsByUserStatus,
					PartitionKey: KeyAttribute{Name: "user_id", Type: "S"},
					SortKey:      &KeyAttribute{Name: AttrStatusKey, Type: "S"},
				}),
			},
		},
		{
			Version:     "V004",
			Description: "Create secondary indexes",
			Statements: []Statement{
				EnsureIndexStatement(IndexSpec{
					Table:        TablePostsByID,
					Name:         "user_id_idx",
					PartitionKey: KeyAttribute{Name: "user_id", Type: "S"},
				}),
				EnsureIndexStatement(IndexSpec{
					Table:        TablePostsByID,
					Name:         "status_idx",
					PartitionKey: KeyAttribute{Name: "status", Type: "S"},
				}),
				EnsureIndexStatement(IndexSpec{
					Table:        TableUsersByEmail,
					Name:         "user_id_idx",
					PartitionKey: KeyAttribute{Name: "user_id", Type: "S"},
				}),
			},
		},
	}
}

// LedgerTableSpec is the ledger view the runner ensures before anything
// else runs. Keyed by version with the attempt timestamp as sort key so
// retried migrations append rather than overwrite.
func LedgerTableSpec() TableSpec {
	return TableSpec{
		Name:         LedgerTable,
		PartitionKey: KeyAttribute{Name: "version", Type: "S"},
		SortKey:      &KeyAttribute{Name: "applied_at", Type: "S"},
	}
}
