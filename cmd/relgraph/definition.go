package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/relgraph/relgraph"
)

// definitionFile is the YAML shape of a model definition. Tables may carry
// inline rows, which are loaded into an in-memory engine so checks and
// recommendations work without a database connection.
type definitionFile struct {
	Tables      []tableDef  `yaml:"tables"`
	ForeignKeys []fkDef     `yaml:"foreign_keys"`
	Filters     []filterDef `yaml:"filters"`
}

type tableDef struct {
	Name    string   `yaml:"name"`
	Handle  string   `yaml:"handle"`
	Columns []string `yaml:"columns"`
	PK      string   `yaml:"pk"`
	Rows    [][]any  `yaml:"rows"`
}

type fkDef struct {
	Table  string `yaml:"table"`  // referencing table
	Column string `yaml:"column"` // referencing column
	Ref    string `yaml:"ref"`    // referenced table
}

type filterDef struct {
	Table string `yaml:"table"`
	Expr  string `yaml:"expr"`
}

// loadDefinition builds a model from a YAML definition file, backed by an
// in-memory engine holding any inline rows.
func loadDefinition(path string, opts *relgraph.Options) (*relgraph.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var def definitionFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	engine := relgraph.NewMemoryEngine()
	m := relgraph.New(engine, opts)

	for _, t := range def.Tables {
		handle := t.Handle
		if handle == "" {
			handle = t.Name
		}
		if err := m.AddTable(t.Name, handle, t.Columns); err != nil {
			return nil, err
		}
		if len(t.Rows) > 0 {
			columnar := make(map[string][]any, len(t.Columns))
			for ri, row := range t.Rows {
				if len(row) != len(t.Columns) {
					return nil, fmt.Errorf("table %s: row %d has %d value(s), want %d", t.Name, ri, len(row), len(t.Columns))
				}
				for ci, col := range t.Columns {
					columnar[col] = append(columnar[col], row[ci])
				}
			}
			if err := engine.RegisterTable(handle, t.Columns, columnar); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range def.Tables {
		if t.PK != "" {
			if err := m.SetPK(t.Name, t.PK); err != nil {
				return nil, err
			}
		}
	}
	for _, fk := range def.ForeignKeys {
		if err := m.AddFK(fk.Ref, fk.Table, fk.Column, false); err != nil {
			return nil, err
		}
	}
	for _, f := range def.Filters {
		if err := m.AddFilter(f.Table, f.Expr); err != nil {
			return nil, err
		}
	}
	return m, nil
}
