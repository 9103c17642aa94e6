package database

import (
	"net/http"
	"strings"

	"github.com/invgo/inventory-service/errcode"
)

// ModuleCode is the errcode module for the relational store layer.
const ModuleCode = 20

var (
	// ErrInvalidConfig rejects unusable configuration at startup.
	ErrInvalidConfig = errcode.Register(errcode.New(
		ModuleCode, 1,
		"database", "error.database.invalid_config", "invalid database config",
		http.StatusInternalServerError,
	))

	// ErrConnectionFailed means the store stayed unreachable through every
	// dial attempt. Carries "attempts" in its data and wraps the last cause.
	ErrConnectionFailed = errcode.Register(errcode.New(
		ModuleCode, 2,
		"database", "error.database.connection_failed", "database connection failed",
		http.StatusInternalServerError,
	))

	// ErrQuery wraps a failed relational operation, keeping the native message.
	ErrQuery = errcode.Register(errcode.New(
		ModuleCode, 3,
		"database", "error.database.query", "database query failed",
		http.StatusInternalServerError,
	))

	// ErrDuplicateKey signals a unique-constraint violation, so callers can
	// surface a specific message instead of a generic failure.
	ErrDuplicateKey = errcode.Register(errcode.New(
		ModuleCode, 4,
		"database", "error.database.duplicate_key", "duplicate key",
		http.StatusConflict,
	))
)

// isDuplicateKeyError detects unique-constraint violations across the
// supported drivers. None of them exposes a typed error through gorm's raw
// path, so this matches the stable fragments of their messages.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key value violates unique constraint") // postgres
}
