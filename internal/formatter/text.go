// Package formatter renders key graphs, check reports, and key
// recommendations for the command-line surface.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/relgraph/relgraph/internal/check"
	"github.com/relgraph/relgraph/internal/model"
	"github.com/relgraph/relgraph/internal/nav"
)

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// TextFormatter renders compact text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// FormatGraph writes the key graph in compact text format.
func (f *TextFormatter) FormatGraph(g model.Graph) error {
	for i, table := range g.Tables() {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		f.formatTable(table)
	}
	return nil
}

func (f *TextFormatter) formatTable(table model.Table) {
	pkStr := ""
	if table.PK != "" {
		pkStr = fmt.Sprintf(" (PK: %s)", table.PK)
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", col)
	}

	if len(table.FKs) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCED BY:")
		for _, fk := range table.FKs {
			_, _ = fmt.Fprintf(f.writer, "    %s.%s\n", fk.ReferencingTable, fk.ReferencingColumn)
		}
	}

	if len(table.Filters) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  FILTERS:")
		for _, flt := range table.Filters {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", flt.Expr)
		}
	}
}

// FormatResults writes one line per check result, with details and value
// samples for failures.
func (f *TextFormatter) FormatResults(results []check.Result) error {
	for _, res := range results {
		if res.OK() {
			_, _ = fmt.Fprintf(f.writer, "%s  %s.%s\n", passMark("PASS"), res.Table, res.Column)
			continue
		}
		_, _ = fmt.Fprintf(f.writer, "%s  %s.%s [%s]\n", failMark("FAIL"), res.Table, res.Column, res.Code)
		if res.Detail != "" {
			_, _ = fmt.Fprintf(f.writer, "      %s\n", res.Detail)
		}
		for _, s := range res.Samples {
			_, _ = fmt.Fprintf(f.writer, "      %v (%d occurrence(s))\n", s.Value, s.Count)
		}
	}
	return nil
}

// FormatCandidates writes the ranked key candidates of one table.
func (f *TextFormatter) FormatCandidates(table string, candidates []check.Candidate) error {
	_, _ = fmt.Fprintf(f.writer, "CANDIDATES for %s\n", table)
	for _, c := range candidates {
		mark := passMark("  + ")
		if !c.Candidate {
			mark = failMark("  - ")
		}
		line := c.Column
		if c.Explanation != "" {
			line += ": " + c.Explanation
		}
		_, _ = fmt.Fprintf(f.writer, "%s%s\n", mark, line)
	}
	return nil
}

// FormatPropagation writes a filter-propagation plan: the semi-join steps
// restricting each table, in graph order.
func (f *TextFormatter) FormatPropagation(g model.Graph, start string, restrictions map[string][]nav.Restriction) error {
	_, _ = fmt.Fprintf(f.writer, "PROPAGATION from %s\n", start)
	for _, t := range g.Tables() {
		steps := restrictions[t.Name]
		if len(steps) == 0 {
			continue
		}
		parts := make([]string, 0, len(steps))
		for _, r := range steps {
			parts = append(parts, fmt.Sprintf("%s in %s.%s", r.Column, r.Other, r.OtherColumn))
		}
		_, _ = fmt.Fprintf(f.writer, "  %s: %s\n", t.Name, strings.Join(parts, " AND "))
	}
	return nil
}
