package db

import (
	"context"
	"fmt"
)

// PostgresIntrospector lists schema structure from a PostgreSQL database.
type PostgresIntrospector struct {
	client *PostgresClient
	schema string
}

// NewPostgresIntrospector creates an introspector for one schema
// ("public" when empty).
func NewPostgresIntrospector(client *PostgresClient, schemaName string) *PostgresIntrospector {
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresIntrospector{client: client, schema: schemaName}
}

// ListTables implements Introspector.
func (i *PostgresIntrospector) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := i.client.Conn().Query(ctx, query, i.schema)
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
func (i *PostgresIntrospector) ListColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := i.client.Conn().Query(ctx, query, i.schema, table)
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
func (i *PostgresIntrospector) PrimaryKey(ctx context.Context, table string) (string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`
	rows, err := i.client.Conn().Query(ctx, query, i.schema, table)
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
func (i *PostgresIntrospector) ForeignKeys(ctx context.Context, table string) ([]ForeignKeyRef, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`
	rows, err := i.client.Conn().Query(ctx, query, i.schema, table)
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
