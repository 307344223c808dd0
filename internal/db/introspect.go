package db

import "context"

// ForeignKeyRef describes one declared single-column foreign key found in a
// live database: the given column references RefTable.RefColumn.
type ForeignKeyRef struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Introspector lists the structure of a live database so a key graph can be
// seeded from it. Composite keys are reported as absent (empty PK, skipped
// FK): the key graph models single-column keys only.
type Introspector interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]string, error)

	// PrimaryKey returns the single PK column of a table, or "" when the
	// table has no PK or a composite one.
	PrimaryKey(ctx context.Context, table string) (string, error)

	// ForeignKeys returns the table's declared single-column foreign keys.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKeyRef, error)
}
