package db

import (
	"context"
	"fmt"
)

// MySQLIntrospector lists schema structure from a MySQL database.
type MySQLIntrospector struct {
	client *MySQLClient
	schema string
}

// NewMySQLIntrospector creates an introspector for one database schema.
func NewMySQLIntrospector(client *MySQLClient, schemaName string) *MySQLIntrospector {
	return &MySQLIntrospector{client: client, schema: schemaName}
}

// ListTables implements Introspector.
func (i *MySQLIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := i.client.DB().QueryContext(ctx, query, i.schema)
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
func (i *MySQLIntrospector) ListColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := i.client.DB().QueryContext(ctx, query, i.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// PrimaryKey implements Introspector.
func (i *MySQLIntrospector) PrimaryKey(ctx context.Context, table string) (string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`
	rows, err := i.client.DB().QueryContext(ctx, query, i.schema, table)
	if err != nil {
		return "", fmt.Errorf("failed to read primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		pk = append(pk, name)
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
func (i *MySQLIntrospector) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyRef, error) {
	query := `
		SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position
	`
	rows, err := i.client.DB().QueryContext(ctx, query, i.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	seen := make(map[string]int)
	byName := make(map[string]ForeignKeyRef)
	var names []string
	for rows.Next() {
		var constraint string
		var fk ForeignKeyRef
		if err := rows.Scan(&constraint, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		seen[constraint]++
		if seen[constraint] == 1 {
			byName[constraint] = fk
			names = append(names, constraint)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fks []ForeignKeyRef
	for _, name := range names {
		if seen[name] > 1 {
			continue
		}
		fks = append(fks, byName[name])
	}
	return fks, nil
}
