// Package testutil provides in-process backing stores for tests: a
// throwaway sqlite database with the products schema and an embedded
// redis server.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/invgo/inventory-service/database"
	"github.com/invgo/inventory-service/logger"
)

const productsSchema = `
CREATE TABLE products (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    sku         TEXT NOT NULL UNIQUE,
    category    TEXT NOT NULL DEFAULT 'general',
    description TEXT NOT NULL DEFAULT '',
    quantity    INTEGER NOT NULL DEFAULT 0,
    price       REAL NOT NULL DEFAULT 0,
    cost        REAL NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'active',
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
)`

// NewSQLiteStore spins up an isolated in-memory database with the products
// schema and returns an executor over it. Cleanup is registered on t.
func NewSQLiteStore(t *testing.T) *database.Executor {
	t.Helper()

	cfg := database.Config{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	mgr, err := database.NewManager(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	db, err := mgr.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Exec(productsSchema).Error)

	return database.NewExecutor(mgr, logger.NewNop())
}

// SeedProduct inserts one row and returns its id.
func SeedProduct(t *testing.T, exec *database.Executor, name, sku, category string, quantity int, price float64, status string) int64 {
	t.Helper()

	now := time.Now().UTC()
	id, err := exec.Insert(context.Background(), `
		INSERT INTO products (name, sku, category, description, quantity, price, cost, status, created_at, updated_at)
		VALUES (@name, @sku, @category, '', @quantity, @price, 0, @status, @now, @now)`,
		database.Params{
			"name":     name,
			"sku":      sku,
			"category": category,
			"quantity": quantity,
			"price":    price,
			"status":   status,
			"now":      now,
		})
	require.NoError(t, err)
	return id
}
