package formatter

import (
	"fmt"
	"io"

	"github.com/relgraph/relgraph/internal/check"
	"github.com/relgraph/relgraph/internal/model"
)

// MarkdownFormatter renders markdown.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// FormatGraph writes the key graph in markdown format.
func (f *MarkdownFormatter) FormatGraph(g model.Graph) error {
	_, _ = fmt.Fprintln(f.writer, "# Data Model")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range g.Tables() {
		f.formatTable(table)
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(table model.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)
	for _, col := range table.Columns {
		if col == table.PK {
			_, _ = fmt.Fprintf(f.writer, "- **%s** (PK)\n", col)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", col)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.FKs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Referenced by")
		_, _ = fmt.Fprintln(f.writer)
		for _, fk := range table.FKs {
			_, _ = fmt.Fprintf(f.writer, "- %s.%s\n", fk.ReferencingTable, fk.ReferencingColumn)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(table.Filters) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Filters")
		_, _ = fmt.Fprintln(f.writer)
		for _, flt := range table.Filters {
			_, _ = fmt.Fprintf(f.writer, "- `%s`\n", flt.Expr)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

// FormatResults writes a markdown table of check outcomes.
func (f *MarkdownFormatter) FormatResults(results []check.Result) error {
	_, _ = fmt.Fprintln(f.writer, "# Integrity Report")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintln(f.writer, "| Table | Column | Status | Detail |")
	_, _ = fmt.Fprintln(f.writer, "|-------|--------|--------|--------|")
	for _, res := range results {
		status := "pass"
		if !res.OK() {
			status = string(res.Code)
		}
		_, _ = fmt.Fprintf(f.writer, "| %s | %s | %s | %s |\n", res.Table, res.Column, status, res.Detail)
	}
	return nil
}
