package relgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgraph/relgraph"
	"github.com/relgraph/relgraph/internal/check"
	"github.com/relgraph/relgraph/internal/db"
)

func seededEngine(t *testing.T) *relgraph.MemoryEngine {
	t.Helper()

	e := relgraph.NewMemoryEngine()
	err := e.RegisterTable("users", []string{"id", "name"}, map[string][]check.Value{
		"id":   {1, 2, 3},
		"name": {"ann", "bob", "cal"},
	})
	require.NoError(t, err)
	err = e.RegisterTable("orders", []string{"id", "user_id"}, map[string][]check.Value{
		"id":      {100, 101, 102, 103},
		"user_id": {1, 2, 99, nil},
	})
	require.NoError(t, err)
	return e
}

func seededModel(t *testing.T) *relgraph.Model {
	t.Helper()

	m := relgraph.New(seededEngine(t), nil)
	require.NoError(t, m.AddTable("users", "users", []string{"id", "name"}))
	require.NoError(t, m.AddTable("orders", "orders", []string{"id", "user_id"}))
	require.NoError(t, m.SetPK("users", "id"))
	require.NoError(t, m.SetPK("orders", "id"))
	require.NoError(t, m.AddFK("users", "orders", "user_id", true))
	return m
}

func TestModelEditing(t *testing.T) {
	m := seededModel(t)

	tables := m.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "users", tables[0].Name)
	require.Len(t, tables[0].FKs, 1)
	assert.Equal(t, relgraph.FK{ReferencingTable: "orders", ReferencingColumn: "user_id"}, tables[0].FKs[0])

	assert.ErrorIs(t, m.AddTable("users", "users", []string{"id"}), relgraph.ErrDuplicateTable)
	assert.ErrorIs(t, m.SetPK("ghost", "id"), relgraph.ErrUnknownTable)
}

func TestSnapshotSurvivesEdits(t *testing.T) {
	m := seededModel(t)

	before := m.Graph()
	require.NoError(t, m.RemoveTable("orders"))

	assert.False(t, m.Graph().HasTable("orders"))
	assert.True(t, before.HasTable("orders"))
	u, ok := before.Table("users")
	require.True(t, ok)
	assert.Len(t, u.FKs, 1)
}

func TestFocusStateMachine(t *testing.T) {
	m := seededModel(t)
	ctx := context.Background()

	assert.ErrorIs(t, m.Focus("ghost"), relgraph.ErrUnknownTable)
	require.NoError(t, m.Focus("orders"))
	assert.Equal(t, "orders", m.Focused())

	// Row-level work on the focused table stays legal.
	require.NoError(t, m.AddFilter("orders", "user_id IS NOT NULL"))
	_, err := m.CheckPK(ctx, "orders")
	require.NoError(t, err)

	// Everything structural or cross-table is rejected until Defocus.
	assert.ErrorIs(t, m.AddTable("tags", "tags", []string{"id"}), relgraph.ErrModelFocused)
	assert.ErrorIs(t, m.RemoveTable("users"), relgraph.ErrModelFocused)
	assert.ErrorIs(t, m.AddFilter("users", "id > 0"), relgraph.ErrModelFocused)
	_, err = m.CheckFK(ctx, "users", "orders", "user_id")
	assert.ErrorIs(t, err, relgraph.ErrModelFocused)
	_, err = m.CheckPK(ctx, "users")
	assert.ErrorIs(t, err, relgraph.ErrModelFocused)
	_, err = m.Propagate("orders")
	assert.ErrorIs(t, err, relgraph.ErrModelFocused)
	assert.ErrorIs(t, m.Focus("users"), relgraph.ErrModelFocused)

	m.Defocus()
	assert.Empty(t, m.Focused())
	require.NoError(t, m.AddTable("tags", "tags", []string{"id"}))

	// Filters applied while focused survive defocusing.
	o, ok := m.Graph().Table("orders")
	require.True(t, ok)
	require.Len(t, o.Filters, 1)
	assert.Equal(t, "user_id IS NOT NULL", o.Filters[0].Expr)
}

func TestModelChecks(t *testing.T) {
	m := seededModel(t)
	ctx := context.Background()

	res, err := m.CheckPK(ctx, "users")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = m.CheckFK(ctx, "users", "orders", "user_id")
	require.NoError(t, err)
	assert.Equal(t, check.CodeFKNotContained, res.Code)
	assert.Equal(t, 1, res.MismatchCount)

	results, err := m.CheckAll(ctx)
	require.NoError(t, err)
	// Two PK checks plus one FK check, in graph order.
	require.Len(t, results, 3)
	assert.Equal(t, "users", results[0].Table)
	assert.Equal(t, "orders", results[1].Table)
	assert.Equal(t, check.CodeFKNotContained, results[2].Code)
}

func TestModelRecommend(t *testing.T) {
	m := seededModel(t)

	cands, err := m.RecommendFK(context.Background(), "orders", "users")
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.False(t, cands[0].Candidate)
	assert.False(t, cands[1].Candidate)
	assert.Equal(t, "user_id", cands[0].Column)
	assert.Equal(t, 1, cands[0].MismatchCount)
}

func TestModelNavigation(t *testing.T) {
	m := seededModel(t)

	d, err := m.ResolveDirection("users", "orders", "")
	require.NoError(t, err)
	assert.Equal(t, relgraph.Direction{Referencing: "orders", ReferencingColumn: "user_id", Referenced: "users"}, d)

	_, err = m.ResolveDirection("users", "ghost", "")
	assert.ErrorIs(t, err, relgraph.ErrUnknownTable)

	require.NoError(t, m.AddFilter("users", "name <> 'ghost'"))
	restrictions, err := m.Propagate("users")
	require.NoError(t, err)
	require.Len(t, restrictions["orders"], 1)
	assert.Equal(t, relgraph.Restriction{Table: "orders", Column: "user_id", Other: "users", OtherColumn: "id"}, restrictions["orders"][0])
}

func TestCommandsReplayRoundTrip(t *testing.T) {
	m := seededModel(t)
	require.NoError(t, m.AddFilter("orders", "user_id IS NOT NULL"))

	cmds := m.Commands()

	// Tables come first, then keys, then filters.
	assert.Equal(t, relgraph.OpAddTable, cmds[0].Op)
	assert.Equal(t, relgraph.OpAddFilter, cmds[len(cmds)-1].Op)

	replayed, err := relgraph.Replay(cmds, seededEngine(t), nil)
	require.NoError(t, err)

	orig, copied := m.Tables(), replayed.Tables()
	require.Len(t, copied, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].Name, copied[i].Name)
		assert.Equal(t, orig[i].Handle, copied[i].Handle)
		assert.Equal(t, orig[i].Columns, copied[i].Columns)
		assert.Equal(t, orig[i].PK, copied[i].PK)
		assert.ElementsMatch(t, orig[i].FKs, copied[i].FKs)
		assert.Equal(t, orig[i].Filters, copied[i].Filters)
	}
}

func TestReplayRejectsUnknownOp(t *testing.T) {
	_, err := relgraph.Replay([]relgraph.Command{{Op: "rename-galaxy"}}, relgraph.NewMemoryEngine(), nil)
	assert.ErrorContains(t, err, "unknown op")
}

func TestFromIntrospector(t *testing.T) {
	ctx := context.Background()
	client, err := db.NewSQLiteClient(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	stmts := []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id))",
		"INSERT INTO users VALUES (1, 'ann')",
		"INSERT INTO orders VALUES (100, 1), (101, 7)",
	}
	for _, stmt := range stmts {
		_, err := client.DB().ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	m, err := relgraph.FromIntrospector(ctx, db.NewSQLiteIntrospector(client), db.NewSQLiteEngine(client), nil)
	require.NoError(t, err)

	u, ok := m.Graph().Table("users")
	require.True(t, ok)
	assert.Equal(t, "id", u.PK)
	require.Len(t, u.FKs, 1)
	assert.Equal(t, "user_id", u.FKs[0].ReferencingColumn)

	res, err := m.CheckFK(ctx, "users", "orders", "user_id")
	require.NoError(t, err)
	assert.Equal(t, check.CodeFKNotContained, res.Code)
	assert.Equal(t, 1, res.MismatchCount)
}
