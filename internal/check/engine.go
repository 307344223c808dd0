// Package check validates key constraints and recommends key candidates by
// delegating row-level computation to an external tabular engine. Checks read
// the key graph, never mutate it, and return structured pass/fail results:
// an engine execution failure is itself a result, not a crash.
package check

import "context"

// Value is a single cell value as produced by an engine. nil represents NULL.
type Value = any

// ValueCount pairs a value with its number of occurrences.
type ValueCount struct {
	Value Value
	Count int
}

// MismatchSummary reports a distinct-value anti-join of a column against a
// reference key column. Counts are in rows; NULLs are excluded throughout.
type MismatchSummary struct {
	MismatchCount int
	TotalNonNull  int
	TopMismatches []ValueCount
}

// KeyStats reports duplicate and NULL occurrences in a would-be key column.
type KeyStats struct {
	DupSample []ValueCount
	NullCount int
}

// Engine executes row-level computations against the tables a key graph
// refers to. Handles are the opaque source references stored in the graph;
// only the engine interprets them. Implementations may be local stores or
// remote connections; the methods are the only suspension points in a check.
type Engine interface {
	// ReadColumn returns all values of one column, NULLs included as nil.
	ReadColumn(ctx context.Context, handle, column string) ([]Value, error)

	// CountDistinctMismatch reports the non-null rows of handle.column whose
	// value does not occur in refHandle.refColumn, with a bounded sample of
	// the most frequent mismatching values.
	CountDistinctMismatch(ctx context.Context, handle, column, refHandle, refColumn string) (MismatchSummary, error)

	// CountDuplicatesAndNulls reports repeated values and NULL occurrences
	// in handle.column.
	CountDuplicatesAndNulls(ctx context.Context, handle, column string) (KeyStats, error)
}
