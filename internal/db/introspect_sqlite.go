package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteIntrospector lists schema structure from a SQLite database.
type SQLiteIntrospector struct {
	client *SQLiteClient
}

// NewSQLiteIntrospector creates a SQLite introspector.
func NewSQLiteIntrospector(client *SQLiteClient) *SQLiteIntrospector {
	return &SQLiteIntrospector{client: client}
}

// ListTables implements Introspector.
func (i *SQLiteIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := i.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ListColumns implements Introspector.
func (i *SQLiteIntrospector) ListColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := i.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table, '"')))
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// PrimaryKey implements Introspector.
func (i *SQLiteIntrospector) PrimaryKey(ctx context.Context, table string) (string, error) {
	rows, err := i.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table, '"')))
	if err != nil {
		return "", fmt.Errorf("failed to read primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var cid, notNull, pkOrder int
		var name, colType string
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkOrder); err != nil {
			return "", err
		}
		if pkOrder > 0 {
			pk = append(pk, name)
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(pk) != 1 {
		return "", nil
	}
	return pk[0], nil
}

// ForeignKeys implements Introspector. Multi-column foreign keys are
// skipped: the key graph models single-column keys only.
func (i *SQLiteIntrospector) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyRef, error) {
	rows, err := i.client.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table, '"')))
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	// PRAGMA foreign_key_list emits one row per column of each constraint;
	// seq > 0 marks the extra columns of composite constraints.
	composite := make(map[int]bool)
	byID := make(map[int]ForeignKeyRef)
	var ids []int
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol string
		var toCol sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		if seq > 0 {
			composite[id] = true
			continue
		}
		byID[id] = ForeignKeyRef{Column: fromCol, RefTable: targetTable, RefColumn: toCol.String}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fks []ForeignKeyRef
	for _, id := range ids {
		if composite[id] {
			continue
		}
		fks = append(fks, byID[id])
	}
	return fks, nil
}
