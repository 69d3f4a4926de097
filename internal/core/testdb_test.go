package core_test

import (
	"context"
	"os"
	"testing"

	"cdj-supply/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// testActor is the seeded operator all integration tests attribute writes to.
var testActor = uuid.MustParse("a81bc81b-dead-4e5d-abff-90865d1e13b1")

// setupTestDB connects to the dedicated test database, applies the schema,
// and truncates all tables. Set TEST_DATABASE_URL to run integration tests.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema file: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	hash, err := core.HashPassword("secret123")
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_movements, sale_items, sales, items, users CASCADE;

		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, 'tester', 'tester@example.com', $2);
	`, testActor, hash)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

// newTestServices wires the core services against the test pool with the
// default stock policy.
func newTestServices(t *testing.T) (*pgxpool.Pool, core.InventoryService, core.SaleService, core.ReportingService, context.Context) {
	t.Helper()
	pool := setupTestDB(t)
	inventory := core.NewInventoryService(pool, core.DefaultStockPolicy())
	sales := core.NewSaleService(pool, inventory)
	reporting := core.NewReportingService(pool, sales)
	return pool, inventory, sales, reporting, context.Background()
}
