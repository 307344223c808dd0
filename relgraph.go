// Package relgraph manages a relational data model: a named collection of
// tables connected by declared primary-key and foreign-key relationships,
// independent of whether the tables live in memory or behind a remote query
// engine.
//
// A Model is built up incrementally (add and remove tables, keys, filters),
// queried (list keys, find candidate keys, check referential integrity), and
// navigated (resolve join direction, propagate filters across the key
// graph). Row-level computation is always delegated to a tabular engine; the
// package never materializes joins itself.
//
// # Quick Start
//
//	engine := relgraph.NewMemoryEngine()
//	// register local tables on the engine ...
//
//	m := relgraph.New(engine, nil)
//	_ = m.AddTable("users", "users", []string{"id", "name"})
//	_ = m.AddTable("orders", "orders", []string{"id", "user_id"})
//	_ = m.SetPK("users", "id")
//	_ = m.AddFK("users", "orders", "user_id", true)
//
//	res, err := m.CheckFK(ctx, "users", "orders", "user_id")
//
// # Snapshots
//
// The key graph inside a Model is an immutable value: every edit replaces it
// with a new snapshot, and any snapshot obtained from Graph() stays valid
// and independently usable afterwards. Concurrent readers of snapshots need
// no synchronization; the Model itself expects a single owning caller.
//
// # Serialization
//
// Commands() renders a model as the ordered sequence of primitive edits that
// rebuilds it (tables, then primary keys, then foreign keys, then filters,
// so that every referenced table exists before a key names it). Replay()
// executes such a sequence against an empty model.
package relgraph

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/relgraph/relgraph/internal/check"
	"github.com/relgraph/relgraph/internal/db"
	"github.com/relgraph/relgraph/internal/model"
	"github.com/relgraph/relgraph/internal/nav"
)

// ErrModelFocused is returned when a structural or cross-table operation is
// attempted while the model is focused on a single table.
var ErrModelFocused = errors.New("model is focused on a single table")

// Structural and relationship errors surfaced by model operations.
var (
	ErrDuplicateTable        = model.ErrDuplicateTable
	ErrUnknownTable          = model.ErrUnknownTable
	ErrUnknownColumn         = model.ErrUnknownColumn
	ErrColumnIsFKTarget      = model.ErrColumnIsFKTarget
	ErrNoPKOnReferencedTable = model.ErrNoPKOnReferencedTable
	ErrRefTableHasNoPK       = model.ErrNoPKOnReferencedTable
	ErrNoPK                  = model.ErrNoPK
	ErrNoRelationship        = nav.ErrNoRelationship
	ErrAmbiguousRelationship = nav.ErrAmbiguousRelationship
)

// Re-exported core types, so callers never import internal packages.
type (
	// Graph is an immutable key-graph snapshot.
	Graph = model.Graph
	// Table is one table definition within a graph.
	Table = model.Table
	// FK is a foreign-key entry stored on the referenced table.
	FK = model.FK
	// Selection names a table or column to keep, optionally renamed.
	Selection = model.Selection
	// Engine is the tabular-engine collaborator executing row-level work.
	Engine = check.Engine
	// Result is the structured outcome of an integrity check.
	Result = check.Result
	// Candidate is one scored key candidate.
	Candidate = check.Candidate
	// Direction is a resolved parent/child relationship.
	Direction = nav.Direction
	// Restriction is one propagated semi-join step.
	Restriction = nav.Restriction
)

// Options configures a Model.
//
// All fields are optional. If not specified:
//   - SampleCap: failed checks report up to check.DefaultSampleCap example
//     values
//   - Logger: logging is disabled
type Options struct {
	// SampleCap bounds the number of example values reported by a failed
	// check. The numeric summary always covers all rows.
	SampleCap int

	// Logger receives diagnostic logs from checks and recommendations.
	Logger *zap.Logger
}

// Model is a relational data model: a key graph plus the tabular engine its
// tables live on, and the Normal/Focused editing state.
//
// A Model is owned by one caller context at a time; it is not safe for
// concurrent mutation. Graph snapshots obtained from Graph() are immutable
// and freely shareable.
type Model struct {
	graph   model.Graph
	engine  check.Engine
	checker *check.Checker
	focused string
}

// New creates an empty model on the given engine. opts may be nil.
func New(engine Engine, opts *Options) *Model {
	if opts == nil {
		opts = &Options{}
	}
	return &Model{
		graph:   model.NewGraph(),
		engine:  engine,
		checker: check.NewChecker(engine, opts.SampleCap, opts.Logger),
	}
}

// FromIntrospector seeds a model from a live database: every table the
// introspector lists is added with its columns, single-column primary key,
// and single-column foreign keys. Composite keys are skipped by design.
func FromIntrospector(ctx context.Context, intr db.Introspector, engine Engine, opts *Options) (*Model, error) {
	m := New(engine, opts)

	tables, err := intr.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	for _, table := range tables {
		columns, err := intr.ListColumns(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
		}
		if err := m.AddTable(table, table, columns); err != nil {
			return nil, err
		}
	}
	for _, table := range tables {
		pk, err := intr.PrimaryKey(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read primary key of %s: %w", table, err)
		}
		if pk != "" {
			if err := m.SetPK(table, pk); err != nil {
				return nil, err
			}
		}
	}
	for _, table := range tables {
		fks, err := intr.ForeignKeys(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
		}
		for _, fk := range fks {
			if !m.graph.HasTable(fk.RefTable) {
				continue
			}
			if err := m.AddFK(fk.RefTable, table, fk.Column, false); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Graph returns the current key-graph snapshot.
func (m *Model) Graph() Graph {
	return m.graph
}

// Tables returns the current table definitions in insertion order.
func (m *Model) Tables() []Table {
	return m.graph.Tables()
}

// Focused returns the focused table name, or "" in normal state.
func (m *Model) Focused() string {
	return m.focused
}

// Focus puts the model into focused state: until Defocus, only the named
// table's row-level operations are legal.
func (m *Model) Focus(table string) error {
	if m.focused != "" && m.focused != table {
		return fmt.Errorf("already focused on %q: %w", m.focused, ErrModelFocused)
	}
	if !m.graph.HasTable(table) {
		return fmt.Errorf("table %q: %w", table, ErrUnknownTable)
	}
	m.focused = table
	return nil
}

// Defocus returns the model to normal state, keeping any filters applied to
// the focused table.
func (m *Model) Defocus() {
	m.focused = ""
}

func (m *Model) structuralGuard() error {
	if m.focused != "" {
		return fmt.Errorf("focused on %q: %w", m.focused, ErrModelFocused)
	}
	return nil
}

// AddTable adds a table with the given engine handle and row schema.
func (m *Model) AddTable(name, handle string, columns []string) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.AddTable(name, handle, columns)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// RemoveTable removes a table and every foreign key naming it.
func (m *Model) RemoveTable(name string) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.RemoveTable(name)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// RenameTable renames a table, rewriting foreign keys that reference it.
func (m *Model) RenameTable(oldName, newName string) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.RenameTable(oldName, newName)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// SetPK designates a table's primary key column.
func (m *Model) SetPK(table, column string) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.SetPK(table, column)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// ClearPK removes a table's primary key designation.
func (m *Model) ClearPK(table string) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.ClearPK(table)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// AddFK declares that referencingTable.column references refTable's primary
// key. With checked true the referenced table must already have a PK.
func (m *Model) AddFK(refTable, referencingTable, column string, checked bool) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.AddFK(refTable, referencingTable, column, checked)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// RemoveFK removes a declared foreign key.
func (m *Model) RemoveFK(refTable, referencingTable, column string) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.RemoveFK(refTable, referencingTable, column)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// SelectTables keeps only the named tables, in order, with optional renames.
func (m *Model) SelectTables(selection []Selection) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.SelectTables(selection)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// SelectColumns keeps only the named columns of a table, in order, with
// optional renames, adjusting key designations accordingly.
func (m *Model) SelectColumns(table string, selection []Selection) error {
	if err := m.structuralGuard(); err != nil {
		return err
	}
	g, err := m.graph.SelectColumns(table, selection)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

func (m *Model) rowGuard(table string) error {
	if m.focused != "" && m.focused != table {
		return fmt.Errorf("focused on %q: %w", m.focused, ErrModelFocused)
	}
	return nil
}

// AddFilter attaches an opaque row predicate to a table. Legal in focused
// state only for the focused table.
func (m *Model) AddFilter(table, expr string) error {
	if err := m.rowGuard(table); err != nil {
		return err
	}
	g, err := m.graph.AddFilter(table, expr)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// ClearFilters removes all filters from a table. Legal in focused state only
// for the focused table.
func (m *Model) ClearFilters(table string) error {
	if err := m.rowGuard(table); err != nil {
		return err
	}
	g, err := m.graph.ClearFilters(table)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// CheckPK verifies uniqueness and non-nullness of a table's primary key.
// Legal in focused state only for the focused table.
func (m *Model) CheckPK(ctx context.Context, table string) (Result, error) {
	if err := m.rowGuard(table); err != nil {
		return Result{}, err
	}
	return m.checker.CheckPK(ctx, m.graph, table)
}

// CheckFK verifies that every non-null value of referencingTable.column
// occurs in refTable's primary key.
func (m *Model) CheckFK(ctx context.Context, refTable, referencingTable, column string) (Result, error) {
	if err := m.structuralGuard(); err != nil {
		return Result{}, err
	}
	return m.checker.CheckFK(ctx, m.graph, refTable, referencingTable, column)
}

// CheckAll runs the PK check for every table with a primary key and the FK
// containment check for every declared foreign key, in graph order.
func (m *Model) CheckAll(ctx context.Context) ([]Result, error) {
	if err := m.structuralGuard(); err != nil {
		return nil, err
	}
	var results []Result
	for _, t := range m.graph.Tables() {
		if t.PK == "" {
			continue
		}
		res, err := m.checker.CheckPK(ctx, m.graph, t.Name)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	for _, e := range m.graph.Edges() {
		res, err := m.checker.CheckFK(ctx, m.graph, e.To, e.From, e.FromColumn)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RecommendFK scores every column of table as a foreign-key candidate
// referencing refTable's primary key, ranked for display.
func (m *Model) RecommendFK(ctx context.Context, table, refTable string) ([]Candidate, error) {
	if err := m.structuralGuard(); err != nil {
		return nil, err
	}
	return m.checker.RecommendFK(ctx, m.graph, table, refTable)
}

// RecommendPK scores every column of table as a primary-key candidate.
func (m *Model) RecommendPK(ctx context.Context, table string) ([]Candidate, error) {
	if err := m.structuralGuard(); err != nil {
		return nil, err
	}
	return m.checker.RecommendPK(ctx, m.graph, table)
}

// ResolveDirection determines which of two tables references the other; see
// nav.ResolveDirection for the ambiguity rules.
func (m *Model) ResolveDirection(a, b, referencingHint string) (Direction, error) {
	if err := m.structuralGuard(); err != nil {
		return Direction{}, err
	}
	return nav.ResolveDirection(m.graph, a, b, referencingHint)
}

// Propagate computes how a filter on the start table restricts every
// reachable table, as per-table semi-join steps for the engine to realize.
func (m *Model) Propagate(start string) (map[string][]Restriction, error) {
	if err := m.structuralGuard(); err != nil {
		return nil, err
	}
	return nav.Propagate(m.graph, start)
}
