package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invgo/inventory-service/logger"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()

	mgr, err := NewManager(sqliteConfig(t), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	db, err := mgr.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
		CREATE TABLE items (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			qty  INTEGER NOT NULL DEFAULT 0
		)`).Error)

	return NewExecutor(mgr, logger.NewNop())
}

func TestExecutorInsertReadWrite(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	id, err := exec.Insert(ctx, "INSERT INTO items (name, qty) VALUES (@name, @qty)",
		Params{"name": "bolt", "qty": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = exec.Insert(ctx, "INSERT INTO items (name, qty) VALUES (@name, @qty)",
		Params{"name": "nut", "qty": 9})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id, "ids come from the store, monotonically")

	var rows []struct {
		ID   int64
		Name string
		Qty  int
	}
	require.NoError(t, exec.Read(ctx, &rows,
		"SELECT * FROM items WHERE qty >= @min ORDER BY id", Params{"min": 5}))
	require.Len(t, rows, 1)
	assert.Equal(t, "nut", rows[0].Name)

	affected, err := exec.Write(ctx, "UPDATE items SET qty = @qty WHERE name = @name",
		Params{"qty": 10, "name": "bolt"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = exec.Write(ctx, "DELETE FROM items WHERE name = @name", Params{"name": "ghost"})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestExecutorAcceptsPlaceholderFreeQueries(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	_, err := exec.Insert(ctx, "INSERT INTO items (name) VALUES (@name)", Params{"name": "bolt"})
	require.NoError(t, err)

	// an empty or nil params map must not reach the driver as an argument
	var total int64
	require.NoError(t, exec.Read(ctx, &total, "SELECT COUNT(*) FROM items", Params{}))
	assert.Equal(t, int64(1), total)
	require.NoError(t, exec.Read(ctx, &total, "SELECT COUNT(*) FROM items", nil))
	assert.Equal(t, int64(1), total)

	affected, err := exec.Write(ctx, "UPDATE items SET qty = qty + 1", Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	err = exec.Transaction(ctx, func(tx Conn) error {
		if err := tx.Read(ctx, &total, "SELECT COUNT(*) FROM items", Params{}); err != nil {
			return err
		}
		_, err := tx.Write(ctx, "UPDATE items SET qty = qty + 1", nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestExecutorWrapsDuplicateKey(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	_, err := exec.Insert(ctx, "INSERT INTO items (name) VALUES (@name)", Params{"name": "bolt"})
	require.NoError(t, err)

	_, err = exec.Insert(ctx, "INSERT INTO items (name) VALUES (@name)", Params{"name": "bolt"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NotErrorIs(t, err, ErrQuery)
}

func TestExecutorWrapsQueryErrors(t *testing.T) {
	exec := newTestExecutor(t)

	var out []struct{ ID int64 }
	err := exec.Read(context.Background(), &out, "SELECT * FROM no_such_table", Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuery)
}

func TestTransactionCommitsAsUnit(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	err := exec.Transaction(ctx, func(tx Conn) error {
		if _, err := tx.Insert(ctx, "INSERT INTO items (name) VALUES (@name)", Params{"name": "a"}); err != nil {
			return err
		}
		_, err := tx.Insert(ctx, "INSERT INTO items (name) VALUES (@name)", Params{"name": "b"})
		return err
	})
	require.NoError(t, err)

	var total int64
	require.NoError(t, exec.Read(ctx, &total, "SELECT COUNT(*) FROM items", Params{}))
	assert.Equal(t, int64(2), total)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	exec := newTestExecutor(t)
	ctx := context.Background()

	boom := errors.New("abort")
	err := exec.Transaction(ctx, func(tx Conn) error {
		if _, err := tx.Insert(ctx, "INSERT INTO items (name) VALUES (@name)", Params{"name": "a"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var total int64
	require.NoError(t, exec.Read(ctx, &total, "SELECT COUNT(*) FROM items", Params{}))
	assert.Zero(t, total, "the insert must not survive the rollback")
}
