package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgraph/relgraph/internal/check"
	"github.com/relgraph/relgraph/internal/model"
)

func registerUsersOrders(t *testing.T) *MemoryEngine {
	t.Helper()

	e := NewMemoryEngine()
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

func TestRegisterTable(t *testing.T) {
	e := NewMemoryEngine()

	err := e.RegisterTable("t", []string{"a", "b"}, map[string][]check.Value{
		"a": {1, 2},
		"b": {1},
	})
	assert.ErrorContains(t, err, "ragged columns")

	err = e.RegisterTable("t", []string{"a", "b"}, map[string][]check.Value{"a": {1}})
	assert.ErrorContains(t, err, "no data for column")

	err = e.RegisterTable("t", []string{"a"}, map[string][]check.Value{"a": {1, 2}})
	require.NoError(t, err)
	cols, err := e.Columns("t")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cols)
}

func TestMemoryCountDistinctMismatch(t *testing.T) {
	e := registerUsersOrders(t)

	sum, err := e.CountDistinctMismatch(context.Background(), "orders", "user_id", "users", "id")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.MismatchCount)
	assert.Equal(t, 3, sum.TotalNonNull)
	require.Len(t, sum.TopMismatches, 1)
	assert.Equal(t, 99, sum.TopMismatches[0].Value)
	assert.Equal(t, 1, sum.TopMismatches[0].Count)

	_, err = e.CountDistinctMismatch(context.Background(), "orders", "missing", "users", "id")
	assert.ErrorContains(t, err, "no column")
	_, err = e.CountDistinctMismatch(context.Background(), "ghost", "x", "users", "id")
	assert.ErrorContains(t, err, "no table registered")
}

func TestMemoryCountDuplicatesAndNulls(t *testing.T) {
	e := NewMemoryEngine()
	err := e.RegisterTable("t", []string{"pk"}, map[string][]check.Value{
		"pk": {1, 2, 2, 3, nil, nil},
	})
	require.NoError(t, err)

	stats, err := e.CountDuplicatesAndNulls(context.Background(), "t", "pk")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NullCount)
	require.Len(t, stats.DupSample, 1)
	assert.Equal(t, 2, stats.DupSample[0].Value)
	assert.Equal(t, 2, stats.DupSample[0].Count)
}

func TestMemorySampleOrderingIsDeterministic(t *testing.T) {
	e := NewMemoryEngine()
	err := e.RegisterTable("src", []string{"v"}, map[string][]check.Value{
		"v": {"b", "a", "b", "c", "a", "a"},
	})
	require.NoError(t, err)
	err = e.RegisterTable("ref", []string{"k"}, map[string][]check.Value{"k": {}})
	require.NoError(t, err)

	sum, err := e.CountDistinctMismatch(context.Background(), "src", "v", "ref", "k")
	require.NoError(t, err)
	require.Len(t, sum.TopMismatches, 3)
	assert.Equal(t, check.ValueCount{Value: "a", Count: 3}, sum.TopMismatches[0])
	assert.Equal(t, check.ValueCount{Value: "b", Count: 2}, sum.TopMismatches[1])
	assert.Equal(t, check.ValueCount{Value: "c", Count: 1}, sum.TopMismatches[2])
}

// End to end through the checker, the way local models drive the engine.
func TestCheckerOverMemoryEngine(t *testing.T) {
	e := registerUsersOrders(t)
	ctx := context.Background()

	g := model.NewGraph()
	var err error
	g, err = g.AddTable("users", "users", []string{"id", "name"})
	require.NoError(t, err)
	g, err = g.AddTable("orders", "orders", []string{"id", "user_id"})
	require.NoError(t, err)
	g, err = g.SetPK("users", "id")
	require.NoError(t, err)

	c := check.NewChecker(e, 0, nil)

	res, err := c.CheckPK(ctx, g, "users")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = c.CheckFK(ctx, g, "users", "orders", "user_id")
	require.NoError(t, err)
	assert.Equal(t, check.CodeFKNotContained, res.Code)
	assert.Equal(t, 1, res.MismatchCount)
	assert.Equal(t, 3, res.TotalNonNull)
	assert.InDelta(t, 33.3, res.MismatchPct, 0.05)
}
