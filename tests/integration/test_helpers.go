//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/relgraph/relgraph"
)

// The fixture schema shared by all backends: users and orders with one
// declared foreign key, plus one orphaned orders.user_id value (99) so the
// containment check has a known failure to find.

// verifyFixtureGraph checks that introspection produced the fixture schema.
func verifyFixtureGraph(t *testing.T, m *relgraph.Model) {
	t.Helper()

	users, ok := m.Graph().Table("users")
	if !ok {
		t.Fatal("users table not found in graph")
	}
	if users.PK != "id" {
		t.Errorf("expected users PK id, got %q", users.PK)
	}
	if len(users.FKs) != 1 || users.FKs[0].ReferencingTable != "orders" || users.FKs[0].ReferencingColumn != "user_id" {
		t.Errorf("expected orders.user_id to reference users, got %+v", users.FKs)
	}

	orders, ok := m.Graph().Table("orders")
	if !ok {
		t.Fatal("orders table not found in graph")
	}
	if orders.PK != "id" {
		t.Errorf("expected orders PK id, got %q", orders.PK)
	}
}

// verifyFixtureChecks runs the full report and checks for the seeded orphan.
func verifyFixtureChecks(t *testing.T, m *relgraph.Model, results []relgraph.Result) {
	t.Helper()

	var fkFailures int
	for _, res := range results {
		if res.OK() {
			continue
		}
		if res.Table == "orders" && res.Column == "user_id" {
			fkFailures++
			if res.MismatchCount != 1 {
				t.Errorf("expected 1 orphaned orders.user_id row, got %d", res.MismatchCount)
			}
			continue
		}
		t.Errorf("unexpected failure: %s.%s [%s] %s", res.Table, res.Column, res.Code, res.Detail)
	}
	if fkFailures != 1 {
		t.Errorf("expected exactly one orders.user_id failure, got %d", fkFailures)
	}
}
