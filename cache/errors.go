package cache

import (
	"net/http"

	"github.com/invgo/inventory-service/errcode"
)

// ModuleCode is the errcode module for the cache layer. These errors stay
// inside the service: the adapter's API degrades instead of propagating them,
// so no caller-facing response ever carries a cache error code.
const ModuleCode = 30

var (
	// ErrSerialize means a value could not be encoded for storage.
	ErrSerialize = errcode.Register(errcode.New(
		ModuleCode, 1,
		"cache", "error.cache.serialize", "cache serialization failed",
		http.StatusInternalServerError,
	))

	// ErrStoreGet wraps a failed cache read.
	ErrStoreGet = errcode.Register(errcode.New(
		ModuleCode, 2,
		"cache", "error.cache.store_get", "cache get failed",
		http.StatusInternalServerError,
	))

	// ErrStoreSet wraps a failed cache write.
	ErrStoreSet = errcode.Register(errcode.New(
		ModuleCode, 3,
		"cache", "error.cache.store_set", "cache set failed",
		http.StatusInternalServerError,
	))

	// ErrStoreDelete wraps a failed cache delete or sweep.
	ErrStoreDelete = errcode.Register(errcode.New(
		ModuleCode, 4,
		"cache", "error.cache.store_delete", "cache delete failed",
		http.StatusInternalServerError,
	))
)
