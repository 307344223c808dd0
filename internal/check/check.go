package check

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/relgraph/relgraph/internal/model"
)

// DefaultSampleCap bounds how many example values a failed check reports.
// The numeric summary (counts, percentage) always covers all rows.
const DefaultSampleCap = 5

// Code classifies a check outcome. The empty code means the check passed.
type Code string

const (
	CodeOK                   Code = ""
	CodePKNotUnique          Code = "pk_not_unique"
	CodePKHasNulls           Code = "pk_has_nulls"
	CodeFKNotContained       Code = "fk_not_contained"
	CodeCheckExecutionFailed Code = "check_execution_failed"
)

// Result is the structured outcome of one integrity check.
type Result struct {
	Table  string
	Column string
	Code   Code
	Detail string

	// FK containment summary. Counts are in rows, NULLs excluded.
	MismatchCount int
	TotalNonNull  int
	MismatchPct   float64

	// NullCount is the number of NULLs found in a PK check.
	NullCount int

	// Samples holds up to the configured cap of offending values with their
	// occurrence counts, most frequent first, ties broken by value.
	Samples []ValueCount
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Code == CodeOK
}

// Checker runs integrity checks against a tabular engine.
type Checker struct {
	engine    Engine
	sampleCap int
	logger    *zap.Logger
}

// NewChecker creates a checker. A sampleCap of zero or less selects
// DefaultSampleCap; a nil logger disables logging.
func NewChecker(engine Engine, sampleCap int, logger *zap.Logger) *Checker {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{engine: engine, sampleCap: sampleCap, logger: logger}
}

// CheckPK verifies that the table's primary key column is unique and
// non-null. The table must exist and have a PK set; those are prerequisite
// errors, returned before any engine call.
func (c *Checker) CheckPK(ctx context.Context, g model.Graph, table string) (Result, error) {
	t, ok := g.Table(table)
	if !ok {
		return Result{}, fmt.Errorf("table %q: %w", table, model.ErrUnknownTable)
	}
	if t.PK == "" {
		return Result{}, fmt.Errorf("table %q: %w", table, model.ErrNoPK)
	}

	res := Result{Table: table, Column: t.PK}
	stats, err := c.engine.CountDuplicatesAndNulls(ctx, t.Handle, t.PK)
	if err != nil {
		res.Code = CodeCheckExecutionFailed
		res.Detail = err.Error()
		c.logger.Warn("pk check did not execute", zap.String("table", table), zap.Error(err))
		return res, nil
	}

	res.NullCount = stats.NullCount
	switch {
	case len(stats.DupSample) > 0:
		res.Code = CodePKNotUnique
		res.Samples = capSamples(stats.DupSample, c.sampleCap)
		res.Detail = fmt.Sprintf("%d value(s) occur more than once in %s.%s", len(stats.DupSample), table, t.PK)
	case stats.NullCount > 0:
		res.Code = CodePKHasNulls
		res.Detail = fmt.Sprintf("%d NULL(s) in %s.%s", stats.NullCount, table, t.PK)
	}
	return res, nil
}

// CheckFK verifies containment: every distinct non-null value of the
// referencing table's column must occur in the referenced table's primary
// key. NULLs vacuously satisfy the constraint. The referenced table must
// have a PK; that prerequisite is checked before any engine call.
func (c *Checker) CheckFK(ctx context.Context, g model.Graph, refTable, referencingTable, column string) (Result, error) {
	ref, ok := g.Table(refTable)
	if !ok {
		return Result{}, fmt.Errorf("referenced table %q: %w", refTable, model.ErrUnknownTable)
	}
	src, ok := g.Table(referencingTable)
	if !ok {
		return Result{}, fmt.Errorf("referencing table %q: %w", referencingTable, model.ErrUnknownTable)
	}
	if !hasColumn(src, column) {
		return Result{}, fmt.Errorf("column %q of table %q: %w", column, referencingTable, model.ErrUnknownColumn)
	}
	if ref.PK == "" {
		return Result{}, fmt.Errorf("table %q: %w", refTable, model.ErrNoPKOnReferencedTable)
	}

	res := Result{Table: referencingTable, Column: column}
	sum, err := c.engine.CountDistinctMismatch(ctx, src.Handle, column, ref.Handle, ref.PK)
	if err != nil {
		res.Code = CodeCheckExecutionFailed
		res.Detail = err.Error()
		c.logger.Warn("fk check did not execute",
			zap.String("referencing", referencingTable),
			zap.String("referenced", refTable),
			zap.Error(err))
		return res, nil
	}

	res.MismatchCount = sum.MismatchCount
	res.TotalNonNull = sum.TotalNonNull
	if sum.MismatchCount == 0 {
		return res, nil
	}

	res.Code = CodeFKNotContained
	if sum.TotalNonNull > 0 {
		res.MismatchPct = 100 * float64(sum.MismatchCount) / float64(sum.TotalNonNull)
	}
	res.Samples = capSamples(sum.TopMismatches, c.sampleCap)
	res.Detail = fmt.Sprintf("%d of %d non-null value(s) in %s.%s not found in %s.%s (%.1f%%)",
		sum.MismatchCount, sum.TotalNonNull, referencingTable, column, refTable, ref.PK, res.MismatchPct)
	return res, nil
}

// capSamples orders samples by descending occurrence then by value and
// truncates them to the configured cap.
func capSamples(samples []ValueCount, limit int) []ValueCount {
	out := append([]ValueCount(nil), samples...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return fmt.Sprint(out[i].Value) < fmt.Sprint(out[j].Value)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func hasColumn(t model.Table, name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
