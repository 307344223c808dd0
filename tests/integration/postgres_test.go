//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/relgraph/relgraph"
	"github.com/relgraph/relgraph/internal/db"
)

func TestPostgresEndToEnd(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	ctx := context.Background()

	client, err := db.NewPostgresClient(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer client.Close(ctx)

	stmts := []string{
		"DROP TABLE IF EXISTS orders",
		"DROP TABLE IF EXISTS users",
		"CREATE TABLE users (id INT PRIMARY KEY, name TEXT)",
		"CREATE TABLE orders (id INT PRIMARY KEY, user_id INT)",
		"INSERT INTO users VALUES (1, 'ann'), (2, 'bob'), (3, 'cal')",
		"INSERT INTO orders VALUES (100, 1), (101, 2), (102, 99), (103, NULL)",
		// Declared after loading so the orphan row survives.
		"ALTER TABLE orders ADD CONSTRAINT orders_user_id_fkey FOREIGN KEY (user_id) REFERENCES users(id) NOT VALID",
	}
	for _, stmt := range stmts {
		if _, err := client.Conn().Exec(ctx, stmt); err != nil {
			t.Fatalf("Failed to seed fixture: %v", err)
		}
	}
	defer func() {
		_, _ = client.Conn().Exec(ctx, "DROP TABLE IF EXISTS orders")
		_, _ = client.Conn().Exec(ctx, "DROP TABLE IF EXISTS users")
	}()

	m, closeFn, err := relgraph.FromDatabase(ctx, url, nil)
	if err != nil {
		t.Fatalf("Failed to build model from database: %v", err)
	}
	defer closeFn()

	verifyFixtureGraph(t, m)

	results, err := m.CheckAll(ctx)
	if err != nil {
		t.Fatalf("Failed to run checks: %v", err)
	}
	verifyFixtureChecks(t, m, results)
}
