package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/relgraph/relgraph/internal/check"
)

// PostgresClient manages a connection to PostgreSQL.
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects to PostgreSQL and verifies the connection.
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection.
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Conn returns the underlying connection.
func (c *PostgresClient) Conn() *pgx.Conn {
	return c.conn
}

// PostgresEngine implements the tabular engine over a pgx connection.
// Table handles are physical table names, resolved via the search path.
type PostgresEngine struct {
	client *PostgresClient
}

// NewPostgresEngine creates an engine over a PostgreSQL connection.
func NewPostgresEngine(client *PostgresClient) *PostgresEngine {
	return &PostgresEngine{client: client}
}

// ReadColumn implements check.Engine.
func (e *PostgresEngine) ReadColumn(ctx context.Context, handle, column string) ([]check.Value, error) {
	rows, err := e.client.conn.Query(ctx, readColumnQuery(handle, column, '"'))
	if err != nil {
		return nil, fmt.Errorf("read %s.%s: %w", handle, column, err)
	}
	defer rows.Close()

	var values []check.Value
	for rows.Next() {
		var v check.Value
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// CountDistinctMismatch implements check.Engine.
func (e *PostgresEngine) CountDistinctMismatch(ctx context.Context, handle, column, refHandle, refColumn string) (check.MismatchSummary, error) {
	var sum check.MismatchSummary

	row := e.client.conn.QueryRow(ctx, totalNonNullQuery(handle, column, '"'))
	if err := row.Scan(&sum.TotalNonNull); err != nil {
		return check.MismatchSummary{}, fmt.Errorf("count %s.%s: %w", handle, column, err)
	}

	row = e.client.conn.QueryRow(ctx, mismatchCountQuery(handle, column, refHandle, refColumn, '"'))
	if err := row.Scan(&sum.MismatchCount); err != nil {
		return check.MismatchSummary{}, fmt.Errorf("anti-join %s.%s against %s.%s: %w", handle, column, refHandle, refColumn, err)
	}
	if sum.MismatchCount == 0 {
		return sum, nil
	}

	rows, err := e.client.conn.Query(ctx, topMismatchQuery(handle, column, refHandle, refColumn, '"'))
	if err != nil {
		return check.MismatchSummary{}, fmt.Errorf("sample mismatches of %s.%s: %w", handle, column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var vc check.ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return check.MismatchSummary{}, err
		}
		sum.TopMismatches = append(sum.TopMismatches, vc)
	}
	return sum, rows.Err()
}

// CountDuplicatesAndNulls implements check.Engine.
func (e *PostgresEngine) CountDuplicatesAndNulls(ctx context.Context, handle, column string) (check.KeyStats, error) {
	var stats check.KeyStats

	row := e.client.conn.QueryRow(ctx, nullCountQuery(handle, column, '"'))
	if err := row.Scan(&stats.NullCount); err != nil {
		return check.KeyStats{}, fmt.Errorf("count NULLs in %s.%s: %w", handle, column, err)
	}

	rows, err := e.client.conn.Query(ctx, dupSampleQuery(handle, column, '"'))
	if err != nil {
		return check.KeyStats{}, fmt.Errorf("sample duplicates in %s.%s: %w", handle, column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var vc check.ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return check.KeyStats{}, err
		}
		stats.DupSample = append(stats.DupSample, vc)
	}
	return stats, rows.Err()
}
