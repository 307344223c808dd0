package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgraph/relgraph/internal/model"
)

// starGraph builds t2 -> t1 (t2.d references t1) and t2 -> t3
// (t2.e references t3).
func starGraph(t *testing.T) model.Graph {
	t.Helper()

	g := model.NewGraph()
	var err error
	g, err = g.AddTable("t1", "t1", []string{"a"})
	require.NoError(t, err)
	g, err = g.AddTable("t2", "t2", []string{"c", "d", "e"})
	require.NoError(t, err)
	g, err = g.AddTable("t3", "t3", []string{"f"})
	require.NoError(t, err)
	for table, pk := range map[string]string{"t1": "a", "t2": "c", "t3": "f"} {
		g, err = g.SetPK(table, pk)
		require.NoError(t, err)
	}
	g, err = g.AddFK("t1", "t2", "d", true)
	require.NoError(t, err)
	g, err = g.AddFK("t3", "t2", "e", true)
	require.NoError(t, err)
	return g
}

func TestResolveDirection(t *testing.T) {
	g := starGraph(t)

	dir, err := ResolveDirection(g, "t1", "t2", "")
	require.NoError(t, err)
	assert.Equal(t, Direction{Referencing: "t2", ReferencingColumn: "d", Referenced: "t1"}, dir)

	// Argument order does not matter.
	dir, err = ResolveDirection(g, "t2", "t1", "")
	require.NoError(t, err)
	assert.Equal(t, "t2", dir.Referencing)

	_, err = ResolveDirection(g, "t1", "t3", "")
	assert.ErrorIs(t, err, ErrNoRelationship)

	_, err = ResolveDirection(g, "missing", "t1", "")
	assert.ErrorIs(t, err, model.ErrUnknownTable)
}

func TestResolveDirectionBidirectional(t *testing.T) {
	g := model.NewGraph()
	var err error
	g, err = g.AddTable("a", "a", []string{"id", "b_id"})
	require.NoError(t, err)
	g, err = g.AddTable("b", "b", []string{"id", "a_id"})
	require.NoError(t, err)
	g, err = g.SetPK("a", "id")
	require.NoError(t, err)
	g, err = g.SetPK("b", "id")
	require.NoError(t, err)
	g, err = g.AddFK("b", "a", "b_id", true)
	require.NoError(t, err)
	g, err = g.AddFK("a", "b", "a_id", true)
	require.NoError(t, err)

	_, err = ResolveDirection(g, "a", "b", "")
	assert.ErrorIs(t, err, ErrAmbiguousRelationship)

	dir, err := ResolveDirection(g, "a", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, Direction{Referencing: "a", ReferencingColumn: "b_id", Referenced: "b"}, dir)

	dir, err = ResolveDirection(g, "a", "b", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", dir.Referencing)

	_, err = ResolveDirection(g, "a", "b", "c")
	assert.ErrorIs(t, err, ErrAmbiguousRelationship)
}

func TestPropagateStar(t *testing.T) {
	g := starGraph(t)

	restrictions, err := Propagate(g, "t1")
	require.NoError(t, err)

	// t2 is restricted through d. t3 stays unrestricted: it is only
	// reachable through t2, and no filter originated there.
	require.Len(t, restrictions["t2"], 1)
	assert.Equal(t, Restriction{Table: "t2", Column: "d", Other: "t1", OtherColumn: "a"}, restrictions["t2"][0])
	assert.Empty(t, restrictions["t1"])
	assert.Empty(t, restrictions["t3"])
}

func TestPropagateLeavesUnreachableAlone(t *testing.T) {
	g := starGraph(t)
	g, err := g.AddTable("island", "island", []string{"x"})
	require.NoError(t, err)

	restrictions, err := Propagate(g, "t1")
	require.NoError(t, err)
	assert.Empty(t, restrictions["island"])
}

func TestPropagateFromChild(t *testing.T) {
	g := starGraph(t)

	restrictions, err := Propagate(g, "t2")
	require.NoError(t, err)

	// Filtering the child restricts both parents to keys still present.
	require.Len(t, restrictions["t1"], 1)
	assert.Equal(t, Restriction{Table: "t1", Column: "a", Other: "t2", OtherColumn: "d"}, restrictions["t1"][0])
	require.Len(t, restrictions["t3"], 1)
	assert.Equal(t, Restriction{Table: "t3", Column: "f", Other: "t2", OtherColumn: "e"}, restrictions["t3"][0])
}

func TestPropagateSelfReferenceTerminates(t *testing.T) {
	g := model.NewGraph()
	var err error
	g, err = g.AddTable("employees", "employees", []string{"id", "manager_id"})
	require.NoError(t, err)
	g, err = g.SetPK("employees", "id")
	require.NoError(t, err)
	g, err = g.AddFK("employees", "employees", "manager_id", true)
	require.NoError(t, err)

	restrictions, err := Propagate(g, "employees")
	require.NoError(t, err)

	// The self edge is traversed exactly once.
	require.Len(t, restrictions["employees"], 1)
	assert.Equal(t, Restriction{Table: "employees", Column: "manager_id", Other: "employees", OtherColumn: "id"}, restrictions["employees"][0])
}

func TestPropagateCycleAccumulatesIntersection(t *testing.T) {
	// Diamond: b -> a, c -> a, d -> b, d -> c. Filtering a reaches d on
	// two paths; d must accumulate both restrictions.
	g := model.NewGraph()
	var err error
	for _, def := range []struct {
		name    string
		columns []string
	}{
		{"a", []string{"id"}},
		{"b", []string{"id", "a_id"}},
		{"c", []string{"id", "a_id"}},
		{"d", []string{"id", "b_id", "c_id"}},
	} {
		g, err = g.AddTable(def.name, def.name, def.columns)
		require.NoError(t, err)
		g, err = g.SetPK(def.name, "id")
		require.NoError(t, err)
	}
	g, err = g.AddFK("a", "b", "a_id", true)
	require.NoError(t, err)
	g, err = g.AddFK("a", "c", "a_id", true)
	require.NoError(t, err)
	g, err = g.AddFK("b", "d", "b_id", true)
	require.NoError(t, err)
	g, err = g.AddFK("c", "d", "c_id", true)
	require.NoError(t, err)

	restrictions, err := Propagate(g, "a")
	require.NoError(t, err)

	require.Len(t, restrictions["b"], 1)
	require.Len(t, restrictions["c"], 1)
	require.Len(t, restrictions["d"], 2, "both paths must restrict d")
	columns := []string{restrictions["d"][0].Column, restrictions["d"][1].Column}
	assert.ElementsMatch(t, []string{"b_id", "c_id"}, columns)
}

func TestPropagateUnknownTable(t *testing.T) {
	g := starGraph(t)
	_, err := Propagate(g, "missing")
	assert.ErrorIs(t, err, model.ErrUnknownTable)
}
