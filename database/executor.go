package database

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/invgo/inventory-service/logger"
)

// Params maps named placeholders (@name in the query text) to their values.
// Parameters are always bound, never interpolated.
type Params map[string]interface{}

// args renders the params for gorm's Raw/Exec. An empty map yields no
// argument at all: passing it through would reach the driver as a bogus
// positional value on placeholder-free queries.
func (p Params) args() []interface{} {
	if len(p) == 0 {
		return nil
	}
	return []interface{}{map[string]interface{}(p)}
}

// Conn is the operation surface shared by the root executor and a
// transaction. Repositories depend on this, not on gorm.
type Conn interface {
	// Read runs a query and scans the rows into dest.
	Read(ctx context.Context, dest interface{}, query string, params Params) error
	// Write runs a mutation and returns the affected row count.
	Write(ctx context.Context, query string, params Params) (int64, error)
	// Insert runs an INSERT and returns the new row id.
	Insert(ctx context.Context, query string, params Params) (int64, error)
}

// Executor issues parameterized operations against the relational store over
// the manager's shared handle. Every operation is wall-clock measured;
// operations above the slow threshold are logged (monitoring only, never
// retried here: redialing is the manager's concern, and application-level
// errors such as constraint violations must never be retried).
type Executor struct {
	mgr  *Manager
	log  *logger.CtxZapLogger
	slow time.Duration
}

// NewExecutor creates an executor over the manager's handle.
func NewExecutor(mgr *Manager, log *logger.CtxZapLogger) *Executor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Executor{
		mgr:  mgr,
		log:  log,
		slow: mgr.cfg.SlowThreshold,
	}
}

// Read implements Conn.
func (e *Executor) Read(ctx context.Context, dest interface{}, query string, params Params) error {
	db, err := e.mgr.Acquire(ctx)
	if err != nil {
		return err
	}
	return e.timed(ctx, "read", query, func() error {
		return db.WithContext(ctx).Raw(query, params.args()...).Scan(dest).Error
	})
}

// Write implements Conn.
func (e *Executor) Write(ctx context.Context, query string, params Params) (int64, error) {
	db, err := e.mgr.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	var affected int64
	err = e.timed(ctx, "write", query, func() error {
		res := db.WithContext(ctx).Exec(query, params.args()...)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// Insert implements Conn. The new id is read on the same connection as the
// INSERT; postgres has no LastInsertId so the query gains a RETURNING clause.
func (e *Executor) Insert(ctx context.Context, query string, params Params) (int64, error) {
	db, err := e.mgr.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = e.timed(ctx, "insert", query, func() error {
		return insertOn(ctx, db, e.mgr.cfg.Driver, &id, query, params)
	})
	return id, err
}

// Transaction runs fn inside one relational transaction: every operation on
// the passed Conn commits or rolls back as a unit.
func (e *Executor) Transaction(ctx context.Context, fn func(tx Conn) error) error {
	db, err := e.mgr.Acquire(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txConn{db: tx, driver: e.mgr.cfg.Driver, exec: e})
	})
}

// timed measures the operation, flags slow ones and wraps store failures.
func (e *Executor) timed(ctx context.Context, kind, query string, op func() error) error {
	start := time.Now()
	err := op()
	elapsed := time.Since(start)

	if e.slow > 0 && elapsed > e.slow {
		e.log.WarnCtx(ctx, "slow query",
			zap.String("kind", kind),
			zap.String("query", truncate(query)),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", e.slow))
	}

	return wrapStoreError(err)
}

// txConn is the Conn bound to one open transaction.
type txConn struct {
	db     *gorm.DB
	driver string
	exec   *Executor
}

func (t *txConn) Read(ctx context.Context, dest interface{}, query string, params Params) error {
	return t.exec.timed(ctx, "read", query, func() error {
		return t.db.WithContext(ctx).Raw(query, params.args()...).Scan(dest).Error
	})
}

func (t *txConn) Write(ctx context.Context, query string, params Params) (int64, error) {
	var affected int64
	err := t.exec.timed(ctx, "write", query, func() error {
		res := t.db.WithContext(ctx).Exec(query, params.args()...)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (t *txConn) Insert(ctx context.Context, query string, params Params) (int64, error) {
	// a transaction is already pinned to one connection
	var id int64
	err := t.exec.timed(ctx, "insert", query, func() error {
		if t.driver == "postgres" {
			return t.db.WithContext(ctx).Raw(query+" RETURNING id", params.args()...).Scan(&id).Error
		}
		if res := t.db.WithContext(ctx).Exec(query, params.args()...); res.Error != nil {
			return res.Error
		}
		return t.db.WithContext(ctx).Raw(lastIDQuery(t.driver)).Scan(&id).Error
	})
	return id, err
}

// insertOn executes the INSERT and reads the generated id without leaving
// the current connection.
func insertOn(ctx context.Context, db *gorm.DB, driver string, id *int64, query string, params Params) error {
	if driver == "postgres" {
		return db.WithContext(ctx).Raw(query+" RETURNING id", params.args()...).Scan(id).Error
	}
	return db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if res := conn.Exec(query, params.args()...); res.Error != nil {
			return res.Error
		}
		return conn.Raw(lastIDQuery(driver)).Scan(id).Error
	})
}

func lastIDQuery(driver string) string {
	if driver == "mysql" {
		return "SELECT LAST_INSERT_ID()"
	}
	return "SELECT last_insert_rowid()"
}

// wrapStoreError translates a native store error into the layered taxonomy,
// keeping the original message in the chain.
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateKeyError(err) {
		return ErrDuplicateKey.Wrap(err)
	}
	return ErrQuery.Wrap(err)
}

func truncate(query string) string {
	const maxLen = 500
	if len(query) > maxLen {
		return query[:maxLen] + "..."
	}
	return query
}
