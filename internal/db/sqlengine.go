package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/relgraph/relgraph/internal/check"
)

// engineSampleLimit bounds how many example values the probes fetch from the
// database. The checker applies its own, smaller display cap on top.
const engineSampleLimit = 20

// SQLEngine implements the tabular engine over a database/sql connection
// (SQLite or MySQL). Table handles are physical table names.
type SQLEngine struct {
	db    *sql.DB
	quote byte
}

// NewSQLiteEngine creates an engine over a SQLite connection.
func NewSQLiteEngine(client *SQLiteClient) *SQLEngine {
	return &SQLEngine{db: client.DB(), quote: '"'}
}

// NewMySQLEngine creates an engine over a MySQL connection.
func NewMySQLEngine(client *MySQLClient) *SQLEngine {
	return &SQLEngine{db: client.DB(), quote: '`'}
}

// ReadColumn implements check.Engine.
func (e *SQLEngine) ReadColumn(ctx context.Context, handle, column string) ([]check.Value, error) {
	rows, err := e.db.QueryContext(ctx, readColumnQuery(handle, column, e.quote))
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

// CountDistinctMismatch implements check.Engine via an anti-join: non-null
// rows of handle.column with no partner in refHandle.refColumn.
func (e *SQLEngine) CountDistinctMismatch(ctx context.Context, handle, column, refHandle, refColumn string) (check.MismatchSummary, error) {
	var sum check.MismatchSummary

	row := e.db.QueryRowContext(ctx, totalNonNullQuery(handle, column, e.quote))
	if err := row.Scan(&sum.TotalNonNull); err != nil {
		return check.MismatchSummary{}, fmt.Errorf("count %s.%s: %w", handle, column, err)
	}

	row = e.db.QueryRowContext(ctx, mismatchCountQuery(handle, column, refHandle, refColumn, e.quote))
	if err := row.Scan(&sum.MismatchCount); err != nil {
		return check.MismatchSummary{}, fmt.Errorf("anti-join %s.%s against %s.%s: %w", handle, column, refHandle, refColumn, err)
	}
	if sum.MismatchCount == 0 {
		return sum, nil
	}

	rows, err := e.db.QueryContext(ctx, topMismatchQuery(handle, column, refHandle, refColumn, e.quote))
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
func (e *SQLEngine) CountDuplicatesAndNulls(ctx context.Context, handle, column string) (check.KeyStats, error) {
	var stats check.KeyStats

	row := e.db.QueryRowContext(ctx, nullCountQuery(handle, column, e.quote))
	if err := row.Scan(&stats.NullCount); err != nil {
		return check.KeyStats{}, fmt.Errorf("count NULLs in %s.%s: %w", handle, column, err)
	}

	rows, err := e.db.QueryContext(ctx, dupSampleQuery(handle, column, e.quote))
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

// The probe queries interpolate identifiers only, quoted for the dialect;
// no user values are ever spliced in.

func quoteIdent(name string, quote byte) string {
	q := string(quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

func readColumnQuery(table, column string, quote byte) string {
	return fmt.Sprintf("SELECT %s FROM %s",
		quoteIdent(column, quote), quoteIdent(table, quote))
}

func totalNonNullQuery(table, column string, quote byte) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL",
		quoteIdent(table, quote), quoteIdent(column, quote))
}

func mismatchCountQuery(table, column, refTable, refColumn string, quote byte) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM %s AS src WHERE src.%s IS NOT NULL AND NOT EXISTS (SELECT 1 FROM %s AS ref WHERE ref.%s = src.%s)",
		quoteIdent(table, quote), quoteIdent(column, quote),
		quoteIdent(refTable, quote), quoteIdent(refColumn, quote), quoteIdent(column, quote))
}

func topMismatchQuery(table, column, refTable, refColumn string, quote byte) string {
	c := quoteIdent(column, quote)
	return fmt.Sprintf(
		"SELECT src.%s, COUNT(*) FROM %s AS src WHERE src.%s IS NOT NULL AND NOT EXISTS (SELECT 1 FROM %s AS ref WHERE ref.%s = src.%s) GROUP BY src.%s ORDER BY COUNT(*) DESC, src.%s LIMIT %d",
		c, quoteIdent(table, quote), c,
		quoteIdent(refTable, quote), quoteIdent(refColumn, quote), c,
		c, c, engineSampleLimit)
}

func nullCountQuery(table, column string, quote byte) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL",
		quoteIdent(table, quote), quoteIdent(column, quote))
}

func dupSampleQuery(table, column string, quote byte) string {
	c := quoteIdent(column, quote)
	return fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM %s WHERE %s IS NOT NULL GROUP BY %s HAVING COUNT(*) > 1 ORDER BY COUNT(*) DESC, %s LIMIT %d",
		c, quoteIdent(table, quote), c, c, c, engineSampleLimit)
}
