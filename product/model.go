// Package product implements the cache-aside product repository: reads
// populate the cache, writes mutate the relational store first and then
// sweep the cache entries that could still reflect the old rows.
package product

import (
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status is the product lifecycle state. Deletion is soft: rows move to
// StatusDeleted and are excluded from default listings and searches.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Stock level buckets derived from quantity; never stored.
const (
	StockLow    = "low"    // quantity <= 10
	StockMedium = "medium" // quantity <= 50
	StockHigh   = "high"
)

// DefaultCategory is assigned when a product is created without one.
const DefaultCategory = "general"

// Product is one inventory record.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku" gorm:"column:sku"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	StockLevel  string    `json:"stock_level" gorm:"-"`
}

// StockLevelFor buckets a quantity.
func StockLevelFor(quantity int) string {
	switch {
	case quantity <= 10:
		return StockLow
	case quantity <= 50:
		return StockMedium
	default:
		return StockHigh
	}
}

// FillStockLevel computes the derived attribute after a relational read.
// Cached payloads already carry it.
func (p *Product) FillStockLevel() {
	p.StockLevel = StockLevelFor(p.Quantity)
}

// Filters is the allow-listed filter set for listings. Anything outside
// these three fields never reaches the query builder.
type Filters struct {
	Category string `json:"category" form:"category"`
	Status   string `json:"status" form:"status"`
	MinStock *int   `json:"min_stock" form:"min_stock"`
}

// ListQuery is a paginated, filtered listing request.
type ListQuery struct {
	Page    int `form:"page"`
	Limit   int `form:"limit"`
	Filters Filters
}

// Pagination is the listing metadata contract.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPagination derives the metadata: total_pages = ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Page is one cached listing result: the rows plus their pagination.
type Page struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Analytics is the single cached aggregate payload.
type Analytics struct {
	Summary    Summary        `json:"summary"`
	Categories []CategoryStat `json:"categories"`
}

// Summary aggregates the whole catalog, deleted rows excluded.
type Summary struct {
	TotalProducts int64   `json:"total_products"`
	TotalStock    int64   `json:"total_stock"`
	TotalValue    float64 `json:"total_value"`
	AverageStock  float64 `json:"average_stock"`
	LowStockCount int64   `json:"low_stock_count"`
	ActiveCount   int64   `json:"active_count"`
}

// CategoryStat is one row of the per-category breakdown.
type CategoryStat struct {
	Category string  `json:"category"`
	Products int64   `json:"products"`
	Stock    int64   `json:"stock"`
	Value    float64 `json:"value"`
}

// CreateInput is the caller-supplied payload for Create.
type CreateInput struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	Status      Status  `json:"status"`
}

// Validate enforces the field constraints: name and sku required,
// quantity/price/cost non-negative, status inside the enum.
func (in CreateInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.SKU, validation.Required),
		validation.Field(&in.Quantity, validation.Min(0)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.Cost, validation.Min(0.0)),
		validation.Field(&in.Status, validation.In(StatusActive, StatusInactive)),
	)
	if err != nil {
		return ErrValidation.WithMsg(err.Error())
	}
	return nil
}

// UpdateInput carries the allow-listed mutable fields; nil means "leave
// unchanged". The id and sku are deliberately not updatable.
type UpdateInput struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Quantity    *int     `json:"quantity"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Status      *Status  `json:"status"`
}

// Validate enforces constraints on the fields that are present.
func (in UpdateInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty),
		validation.Field(&in.Quantity, validation.Min(0)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.Cost, validation.Min(0.0)),
		validation.Field(&in.Status, validation.In(StatusActive, StatusInactive)),
	)
	if err != nil {
		return ErrValidation.WithMsg(err.Error())
	}
	return nil
}

// empty reports whether no allow-listed field is present.
func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Category == nil && in.Description == nil &&
		in.Quantity == nil && in.Price == nil && in.Cost == nil && in.Status == nil
}

// BulkUpdateItem addresses one product inside a bulk mutation.
type BulkUpdateItem struct {
	ID     int64       `json:"id"`
	Fields UpdateInput `json:"fields"`
}

// BulkUpdateResult reports which ids changed and which items failed.
// The transaction commits the successful items even when others fail.
type BulkUpdateResult struct {
	Updated []int64           `json:"updated"`
	Errors  []BulkUpdateError `json:"errors"`
}

// BulkUpdateError is one failed item of a bulk mutation.
type BulkUpdateError struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// round2 normalizes money values to 2-digit precision before storage.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
