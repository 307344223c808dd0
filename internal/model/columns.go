package model

import "fmt"

// SelectColumns keeps only the named columns of a table, in the given order,
// applying any renames. Key bookkeeping follows the removed columns:
//
//   - dropping the table's PK column silently clears the PK designation,
//     unless other tables still reference it through foreign keys, in which
//     case the edit fails with ErrColumnIsFKTarget (remove the dependent
//     foreign keys first);
//   - dropping a column that backs an outgoing foreign key silently drops
//     that foreign-key entry;
//   - renaming a column rewrites the PK designation and any foreign-key
//     entries that use it.
func (g Graph) SelectColumns(table string, selection []Selection) (Graph, error) {
	t, ok := g.tables[table]
	if !ok {
		return Graph{}, fmt.Errorf("table %q: %w", table, ErrUnknownTable)
	}

	renames := make(map[string]string, len(selection)) // old column -> new column
	targets := make(map[string]bool, len(selection))
	for _, sel := range selection {
		if !t.hasColumn(sel.Name) {
			return Graph{}, fmt.Errorf("column %q of table %q: %w", sel.Name, table, ErrUnknownColumn)
		}
		target := sel.target()
		if targets[target] {
			return Graph{}, fmt.Errorf("column %q of table %q: %w", target, table, ErrDuplicateColumn)
		}
		renames[sel.Name] = target
		targets[target] = true
	}

	if t.PK != "" {
		if _, keptPK := renames[t.PK]; !keptPK && len(t.FKs) > 0 {
			return Graph{}, fmt.Errorf("column %q of table %q: %w", t.PK, table, ErrColumnIsFKTarget)
		}
	}

	c := g.clone()
	ct := c.tables[table]

	ct.Columns = ct.Columns[:0]
	for _, sel := range selection {
		ct.Columns = append(ct.Columns, renames[sel.Name])
	}

	if ct.PK != "" {
		if newName, kept := renames[ct.PK]; kept {
			ct.PK = newName
		} else {
			ct.PK = ""
		}
	}

	// Outgoing foreign keys of this table live on the referenced tables.
	for _, other := range c.tables {
		var fks []FK
		for _, fk := range other.FKs {
			if fk.ReferencingTable != table {
				fks = append(fks, fk)
				continue
			}
			newName, kept := renames[fk.ReferencingColumn]
			if !kept {
				continue
			}
			fk.ReferencingColumn = newName
			fks = append(fks, fk)
		}
		other.FKs = fks
	}
	return c, nil
}
