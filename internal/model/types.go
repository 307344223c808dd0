package model

// Table describes one table in a key graph: its row schema, key
// designations, and active filters.
type Table struct {
	// Name is the table's unique name within the graph.
	Name string

	// Handle is an opaque reference to the table's row data (a physical
	// table name or query reference). Only the tabular engine interprets it;
	// the core never does.
	Handle string

	// Columns is the ordered row schema.
	Columns []string

	// PK is the primary key column, or empty when no PK is set.
	// Composite keys are unsupported: a PK is always a single column.
	PK string

	// FKs lists the foreign keys referencing THIS table. Entries are stored
	// on the referenced side so that a table knows who points at it.
	FKs []FK

	// Filters is the ordered list of active row predicates applied to this
	// table. Predicates are opaque to the core.
	Filters []Filter
}

// FK records one foreign key entry: a column in the referencing table that
// points at the owning (referenced) table's primary key.
type FK struct {
	ReferencingTable  string
	ReferencingColumn string
}

// Filter is an opaque row predicate. The core stores, propagates, and hands
// filters to the tabular engine; it never evaluates them.
type Filter struct {
	Expr string
}

// Edge is a flattened foreign-key edge, referencing side first.
type Edge struct {
	From       string // referencing table
	FromColumn string // referencing column
	To         string // referenced table
	ToColumn   string // referenced table's PK at edge-listing time, may be empty
}

// Selection names one item to keep during SelectTables or SelectColumns,
// optionally giving it a new name. An empty Rename keeps the old name.
type Selection struct {
	Name   string
	Rename string
}

func (s Selection) target() string {
	if s.Rename != "" {
		return s.Rename
	}
	return s.Name
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func (t *Table) clone() *Table {
	c := &Table{
		Name:   t.Name,
		Handle: t.Handle,
		PK:     t.PK,
	}
	c.Columns = append(c.Columns, t.Columns...)
	c.FKs = append(c.FKs, t.FKs...)
	c.Filters = append(c.Filters, t.Filters...)
	return c
}
