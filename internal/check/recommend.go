package check

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/relgraph/relgraph/internal/model"
)

// Candidate scores one column's fitness as a key. A clean candidate carries
// an empty explanation; otherwise Explanation says what disqualified it.
type Candidate struct {
	Column      string
	Candidate   bool
	Explanation string

	// MismatchCount is the number of rows whose value is missing from the
	// reference key. Secondary ranking key; zero for PK candidates.
	MismatchCount int
}

// RecommendFK scores every column of table as a foreign-key candidate
// referencing refTable's primary key, via a distinct-value anti-join.
//
// The reference table must have a PK set; that prerequisite is checked
// before any engine call. Engine failures on individual columns become
// explanations rather than aborting the run.
//
// Results are ranked for display: clean candidates first, then ascending
// mismatch count, then column name.
func (c *Checker) RecommendFK(ctx context.Context, g model.Graph, table, refTable string) ([]Candidate, error) {
	t, ok := g.Table(table)
	if !ok {
		return nil, fmt.Errorf("table %q: %w", table, model.ErrUnknownTable)
	}
	ref, ok := g.Table(refTable)
	if !ok {
		return nil, fmt.Errorf("reference table %q: %w", refTable, model.ErrUnknownTable)
	}
	if ref.PK == "" {
		return nil, fmt.Errorf("reference table %q: %w", refTable, model.ErrNoPKOnReferencedTable)
	}

	candidates := make([]Candidate, 0, len(t.Columns))
	for _, column := range t.Columns {
		sum, err := c.engine.CountDistinctMismatch(ctx, t.Handle, column, ref.Handle, ref.PK)
		if err != nil {
			candidates = append(candidates, Candidate{
				Column:      column,
				Explanation: fmt.Sprintf("check failed: %s", err.Error()),
			})
			continue
		}
		cand := Candidate{Column: column, Candidate: sum.MismatchCount == 0, MismatchCount: sum.MismatchCount}
		if sum.MismatchCount > 0 {
			cand.Explanation = fmt.Sprintf("%d value(s) not in %s.%s (e.g. %s)",
				sum.MismatchCount, ref.Name, ref.PK, sampleString(capSamples(sum.TopMismatches, c.sampleCap)))
		}
		candidates = append(candidates, cand)
	}

	rankCandidates(candidates)
	c.logger.Debug("fk recommendation complete",
		zap.String("table", table),
		zap.String("reference", refTable),
		zap.Int("columns", len(candidates)))
	return candidates, nil
}

// RecommendPK scores every column of table as a primary-key candidate:
// a clean candidate is distinct and non-null across all rows.
func (c *Checker) RecommendPK(ctx context.Context, g model.Graph, table string) ([]Candidate, error) {
	t, ok := g.Table(table)
	if !ok {
		return nil, fmt.Errorf("table %q: %w", table, model.ErrUnknownTable)
	}

	candidates := make([]Candidate, 0, len(t.Columns))
	for _, column := range t.Columns {
		stats, err := c.engine.CountDuplicatesAndNulls(ctx, t.Handle, column)
		if err != nil {
			candidates = append(candidates, Candidate{
				Column:      column,
				Explanation: fmt.Sprintf("check failed: %s", err.Error()),
			})
			continue
		}
		cand := Candidate{Column: column, Candidate: true}
		var reasons []string
		if len(stats.DupSample) > 0 {
			cand.Candidate = false
			reasons = append(reasons, fmt.Sprintf("%d duplicated value(s) (e.g. %s)",
				len(stats.DupSample), sampleString(capSamples(stats.DupSample, c.sampleCap))))
		}
		if stats.NullCount > 0 {
			cand.Candidate = false
			reasons = append(reasons, fmt.Sprintf("%d NULL(s)", stats.NullCount))
		}
		cand.Explanation = strings.Join(reasons, "; ")
		candidates = append(candidates, cand)
	}

	rankCandidates(candidates)
	c.logger.Debug("pk recommendation complete",
		zap.String("table", table),
		zap.Int("columns", len(candidates)))
	return candidates, nil
}

// rankCandidates orders for display: candidates first, then ascending
// mismatch count, then column name.
func rankCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Candidate != candidates[j].Candidate {
			return candidates[i].Candidate
		}
		if candidates[i].MismatchCount != candidates[j].MismatchCount {
			return candidates[i].MismatchCount < candidates[j].MismatchCount
		}
		return candidates[i].Column < candidates[j].Column
	})
}

func sampleString(samples []ValueCount) string {
	parts := make([]string, 0, len(samples))
	for _, s := range samples {
		parts = append(parts, fmt.Sprintf("%v×%d", s.Value, s.Count))
	}
	return strings.Join(parts, ", ")
}
