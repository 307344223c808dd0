package relgraph

import "fmt"

// Op identifies one primitive edit in a serialized model.
type Op string

const (
	OpAddTable  Op = "add-table"
	OpSetPK     Op = "set-pk"
	OpAddFK     Op = "add-fk"
	OpAddFilter Op = "add-filter"
)

// Command is one primitive edit. Which fields are meaningful depends on Op:
//
//	add-table   Table, Handle, Columns
//	set-pk      Table, Column
//	add-fk      Table (referencing), Column, RefTable (referenced)
//	add-filter  Table, Expr
type Command struct {
	Op       Op
	Table    string
	Handle   string
	Columns  []string
	Column   string
	RefTable string
	Expr     string
}

// Commands renders the model as the ordered primitive-edit sequence that
// rebuilds it: all tables first, then primary keys, then foreign keys, then
// filters, so a referenced table always exists before a key names it.
func (m *Model) Commands() []Command {
	var cmds []Command
	tables := m.graph.Tables()
	for _, t := range tables {
		cmds = append(cmds, Command{
			Op:      OpAddTable,
			Table:   t.Name,
			Handle:  t.Handle,
			Columns: append([]string(nil), t.Columns...),
		})
	}
	for _, t := range tables {
		if t.PK != "" {
			cmds = append(cmds, Command{Op: OpSetPK, Table: t.Name, Column: t.PK})
		}
	}
	for _, e := range m.graph.Edges() {
		cmds = append(cmds, Command{Op: OpAddFK, Table: e.From, Column: e.FromColumn, RefTable: e.To})
	}
	for _, t := range tables {
		for _, f := range t.Filters {
			cmds = append(cmds, Command{Op: OpAddFilter, Table: t.Name, Expr: f.Expr})
		}
	}
	return cmds
}

// Replay executes a primitive-edit sequence against a new empty model on the
// given engine. Replaying the output of Commands() reproduces an equivalent
// model: same table set, PK set, FK set, and filters.
func Replay(commands []Command, engine Engine, opts *Options) (*Model, error) {
	m := New(engine, opts)
	for i, cmd := range commands {
		var err error
		switch cmd.Op {
		case OpAddTable:
			err = m.AddTable(cmd.Table, cmd.Handle, cmd.Columns)
		case OpSetPK:
			err = m.SetPK(cmd.Table, cmd.Column)
		case OpAddFK:
			// Unchecked: graphs legitimately carry FK entries whose
			// referenced table has no PK yet.
			err = m.AddFK(cmd.RefTable, cmd.Table, cmd.Column, false)
		case OpAddFilter:
			err = m.AddFilter(cmd.Table, cmd.Expr)
		default:
			err = fmt.Errorf("unknown op %q", cmd.Op)
		}
		if err != nil {
			return nil, fmt.Errorf("command %d (%s %s): %w", i, cmd.Op, cmd.Table, err)
		}
	}
	return m, nil
}
