package product

import (
	"net/http"

	"github.com/invgo/inventory-service/errcode"
)

// ModuleCode is the product module identifier inside layered error codes.
const ModuleCode = 40

var (
	// ErrValidation rejects malformed input before any store access.
	ErrValidation = errcode.Register(errcode.New(
		ModuleCode, 1,
		"product", "error.product.validation", "invalid product input",
		http.StatusBadRequest,
	))

	// ErrNotFound maps a missing or soft-deleted product to 404.
	ErrNotFound = errcode.Register(errcode.New(
		ModuleCode, 2,
		"product", "error.product.not_found", "product not found",
		http.StatusNotFound,
	))

	// ErrDuplicateSKU surfaces a unique-constraint conflict on sku as 409.
	ErrDuplicateSKU = errcode.Register(errcode.New(
		ModuleCode, 3,
		"product", "error.product.duplicate_sku", "sku already exists",
		http.StatusConflict,
	))
)
