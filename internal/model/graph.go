// Package model holds the key graph: the mapping from table name to table
// definition (schema handle, primary key, foreign keys, filters) plus the
// structural edits that keep it consistent.
//
// A Graph is an immutable value. Every edit returns a new Graph and leaves
// the receiver untouched, so older snapshots stay valid and independently
// usable after any number of edits.
package model

import "fmt"

// Graph is the key graph: tables in insertion order plus their key
// relationships. The zero value is an empty graph ready for use.
type Graph struct {
	order  []string
	tables map[string]*Table
}

// NewGraph returns an empty key graph.
func NewGraph() Graph {
	return Graph{}
}

// clone deep-copies the graph so edits never reach existing snapshots.
func (g Graph) clone() Graph {
	c := Graph{
		order:  append([]string(nil), g.order...),
		tables: make(map[string]*Table, len(g.tables)),
	}
	for name, t := range g.tables {
		c.tables[name] = t.clone()
	}
	return c
}

// Len returns the number of tables in the graph.
func (g Graph) Len() int {
	return len(g.order)
}

// HasTable reports whether a table with the given name exists.
func (g Graph) HasTable(name string) bool {
	_, ok := g.tables[name]
	return ok
}

// Table returns a copy of the named table definition.
func (g Graph) Table(name string) (Table, bool) {
	t, ok := g.tables[name]
	if !ok {
		return Table{}, false
	}
	return *t.clone(), true
}

// Tables returns copies of all table definitions in insertion order.
func (g Graph) Tables() []Table {
	out := make([]Table, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, *g.tables[name].clone())
	}
	return out
}

// Edges returns every foreign-key edge in deterministic order: referenced
// tables in insertion order, entries in declaration order.
func (g Graph) Edges() []Edge {
	var edges []Edge
	for _, name := range g.order {
		t := g.tables[name]
		for _, fk := range t.FKs {
			edges = append(edges, Edge{
				From:       fk.ReferencingTable,
				FromColumn: fk.ReferencingColumn,
				To:         t.Name,
				ToColumn:   t.PK,
			})
		}
	}
	return edges
}

// AddTable adds a new table with the given source handle and row schema.
func (g Graph) AddTable(name, handle string, columns []string) (Graph, error) {
	if _, ok := g.tables[name]; ok {
		return Graph{}, fmt.Errorf("table %q: %w", name, ErrDuplicateTable)
	}
	c := g.clone()
	if c.tables == nil {
		c.tables = make(map[string]*Table)
	}
	c.order = append(c.order, name)
	c.tables[name] = &Table{
		Name:    name,
		Handle:  handle,
		Columns: append([]string(nil), columns...),
	}
	return c, nil
}

// RemoveTable removes the named table and cascades: every foreign-key entry
// naming it, on either side, is dropped as well.
func (g Graph) RemoveTable(name string) (Graph, error) {
	if _, ok := g.tables[name]; !ok {
		return Graph{}, fmt.Errorf("table %q: %w", name, ErrUnknownTable)
	}
	c := g.clone()
	delete(c.tables, name)
	c.order = removeString(c.order, name)
	for _, t := range c.tables {
		t.FKs = dropFKsFrom(t.FKs, name)
	}
	return c, nil
}

// RenameTable renames a table, rewriting every foreign-key entry that
// references the old name.
func (g Graph) RenameTable(oldName, newName string) (Graph, error) {
	if _, ok := g.tables[oldName]; !ok {
		return Graph{}, fmt.Errorf("table %q: %w", oldName, ErrUnknownTable)
	}
	if oldName == newName {
		return g, nil
	}
	if _, ok := g.tables[newName]; ok {
		return Graph{}, fmt.Errorf("table %q: %w", newName, ErrDuplicateTable)
	}
	c := g.clone()
	t := c.tables[oldName]
	delete(c.tables, oldName)
	t.Name = newName
	c.tables[newName] = t
	for i, n := range c.order {
		if n == oldName {
			c.order[i] = newName
		}
	}
	for _, other := range c.tables {
		for i := range other.FKs {
			if other.FKs[i].ReferencingTable == oldName {
				other.FKs[i].ReferencingTable = newName
			}
		}
	}
	return c, nil
}

// SetPK designates the primary key column of a table.
func (g Graph) SetPK(table, column string) (Graph, error) {
	t, ok := g.tables[table]
	if !ok {
		return Graph{}, fmt.Errorf("table %q: %w", table, ErrUnknownTable)
	}
	if !t.hasColumn(column) {
		return Graph{}, fmt.Errorf("column %q of table %q: %w", column, table, ErrUnknownColumn)
	}
	c := g.clone()
	c.tables[table].PK = column
	return c, nil
}

// ClearPK removes the primary key designation of a table.
func (g Graph) ClearPK(table string) (Graph, error) {
	if _, ok := g.tables[table]; !ok {
		return Graph{}, fmt.Errorf("table %q: %w", table, ErrUnknownTable)
	}
	c := g.clone()
	c.tables[table].PK = ""
	return c, nil
}

// AddFK declares a foreign key: the given column of the referencing table
// points at the referenced table's primary key. The entry is stored on the
// referenced table. When checked is true the referenced table must already
// have a primary key; unchecked adds support multi-step construction where
// keys are declared before the PK exists.
func (g Graph) AddFK(refTable, referencingTable, column string, checked bool) (Graph, error) {
	ref, ok := g.tables[refTable]
	if !ok {
		return Graph{}, fmt.Errorf("referenced table %q: %w", refTable, ErrUnknownTable)
	}
	src, ok := g.tables[referencingTable]
	if !ok {
		return Graph{}, fmt.Errorf("referencing table %q: %w", referencingTable, ErrUnknownTable)
	}
	if !src.hasColumn(column) {
		return Graph{}, fmt.Errorf("column %q of table %q: %w", column, referencingTable, ErrUnknownColumn)
	}
	if checked && ref.PK == "" {
		return Graph{}, fmt.Errorf("table %q: %w", refTable, ErrNoPKOnReferencedTable)
	}
	for _, fk := range ref.FKs {
		if fk.ReferencingTable == referencingTable && fk.ReferencingColumn == column {
			return Graph{}, fmt.Errorf("%s.%s -> %s: %w", referencingTable, column, refTable, ErrDuplicateFK)
		}
	}
	c := g.clone()
	t := c.tables[refTable]
	t.FKs = append(t.FKs, FK{ReferencingTable: referencingTable, ReferencingColumn: column})
	return c, nil
}

// RemoveFK removes a declared foreign key entry.
func (g Graph) RemoveFK(refTable, referencingTable, column string) (Graph, error) {
	ref, ok := g.tables[refTable]
	if !ok {
		return Graph{}, fmt.Errorf("referenced table %q: %w", refTable, ErrUnknownTable)
	}
	for i, fk := range ref.FKs {
		if fk.ReferencingTable == referencingTable && fk.ReferencingColumn == column {
			c := g.clone()
			t := c.tables[refTable]
			t.FKs = append(t.FKs[:i:i], t.FKs[i+1:]...)
			return c, nil
		}
	}
	return Graph{}, fmt.Errorf("no foreign key %s.%s -> %s: %w", referencingTable, column, refTable, ErrUnknownColumn)
}

// SelectTables keeps only the named tables, in the given order, applying any
// renames. Foreign-key entries whose endpoints are no longer present are
// dropped. Naming a table that does not exist is a hard error.
func (g Graph) SelectTables(selection []Selection) (Graph, error) {
	kept := make(map[string]string, len(selection)) // old name -> new name
	targets := make(map[string]bool, len(selection))
	for _, sel := range selection {
		if _, ok := g.tables[sel.Name]; !ok {
			return Graph{}, fmt.Errorf("table %q: %w", sel.Name, ErrUnknownTable)
		}
		target := sel.target()
		if targets[target] {
			return Graph{}, fmt.Errorf("table %q: %w", target, ErrDuplicateTable)
		}
		kept[sel.Name] = target
		targets[target] = true
	}

	c := Graph{tables: make(map[string]*Table, len(selection))}
	for _, sel := range selection {
		t := g.tables[sel.Name].clone()
		t.Name = kept[sel.Name]
		var fks []FK
		for _, fk := range t.FKs {
			newName, ok := kept[fk.ReferencingTable]
			if !ok {
				continue
			}
			fks = append(fks, FK{ReferencingTable: newName, ReferencingColumn: fk.ReferencingColumn})
		}
		t.FKs = fks
		c.order = append(c.order, t.Name)
		c.tables[t.Name] = t
	}
	return c, nil
}

// AddFilter attaches an opaque row predicate to a table.
func (g Graph) AddFilter(table, expr string) (Graph, error) {
	if _, ok := g.tables[table]; !ok {
		return Graph{}, fmt.Errorf("table %q: %w", table, ErrUnknownTable)
	}
	c := g.clone()
	t := c.tables[table]
	t.Filters = append(t.Filters, Filter{Expr: expr})
	return c, nil
}

// ClearFilters removes all filters from a table.
func (g Graph) ClearFilters(table string) (Graph, error) {
	if _, ok := g.tables[table]; !ok {
		return Graph{}, fmt.Errorf("table %q: %w", table, ErrUnknownTable)
	}
	c := g.clone()
	c.tables[table].Filters = nil
	return c, nil
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func dropFKsFrom(fks []FK, referencingTable string) []FK {
	out := fks[:0]
	for _, fk := range fks {
		if fk.ReferencingTable != referencingTable {
			out = append(out, fk)
		}
	}
	return out
}
