package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectColumns(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		selection []Selection
		wantErr   error
		verify    func(t *testing.T, g Graph)
	}{
		{
			name:      "dropping an fk column drops the entry",
			table:     "orders",
			selection: []Selection{{Name: "id"}, {Name: "product_id"}},
			verify: func(t *testing.T, g Graph) {
				users, _ := g.Table("users")
				assert.Empty(t, users.FKs)
				products, _ := g.Table("products")
				assert.Len(t, products.FKs, 1)
			},
		},
		{
			name:      "renaming an fk column rewrites the entry",
			table:     "orders",
			selection: []Selection{{Name: "id"}, {Name: "user_id", Rename: "buyer_id"}, {Name: "product_id"}},
			verify: func(t *testing.T, g Graph) {
				users, _ := g.Table("users")
				require.Len(t, users.FKs, 1)
				assert.Equal(t, "buyer_id", users.FKs[0].ReferencingColumn)
			},
		},
		{
			name:      "dropping an unreferenced pk clears the designation",
			table:     "orders",
			selection: []Selection{{Name: "user_id"}, {Name: "product_id"}},
			verify: func(t *testing.T, g Graph) {
				orders, _ := g.Table("orders")
				assert.Empty(t, orders.PK)
				assert.Equal(t, []string{"user_id", "product_id"}, orders.Columns)
			},
		},
		{
			name:      "dropping a referenced pk is rejected",
			table:     "users",
			selection: []Selection{{Name: "name"}},
			wantErr:   ErrColumnIsFKTarget,
		},
		{
			name:      "renaming a pk keeps the designation",
			table:     "users",
			selection: []Selection{{Name: "id", Rename: "user_id"}, {Name: "name"}},
			verify: func(t *testing.T, g Graph) {
				users, _ := g.Table("users")
				assert.Equal(t, "user_id", users.PK)
			},
		},
		{
			name:      "unknown column",
			table:     "users",
			selection: []Selection{{Name: "missing"}},
			wantErr:   ErrUnknownColumn,
		},
		{
			name:      "colliding rename",
			table:     "users",
			selection: []Selection{{Name: "id", Rename: "x"}, {Name: "name", Rename: "x"}},
			wantErr:   ErrDuplicateColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t)
			g2, err := g.SelectColumns(tt.table, tt.selection)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			requireConsistent(t, g2)
			tt.verify(t, g2)
		})
	}
}

func TestSelectColumnsAfterRemovingDependentFKs(t *testing.T) {
	g := buildGraph(t)

	// With the dependent entries removed first, the pk column may go.
	g, err := g.RemoveFK("users", "orders", "user_id")
	require.NoError(t, err)
	g2, err := g.SelectColumns("users", []Selection{{Name: "name"}})
	require.NoError(t, err)

	users, _ := g2.Table("users")
	assert.Empty(t, users.PK)
	assert.Equal(t, []string{"name"}, users.Columns)
	requireConsistent(t, g2)
}
