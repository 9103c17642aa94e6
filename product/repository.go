package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/database"
	"github.com/invgo/inventory-service/logger"
)

// Store is the relational surface the repository needs. database.Executor
// satisfies it; tests wrap it to observe traffic.
type Store interface {
	database.Conn
	Transaction(ctx context.Context, fn func(tx database.Conn) error) error
}

// Listing and pagination bounds.
const (
	DefaultLimit = 10
	MaxLimit     = 100

	// DefaultLowStockThreshold matches the StockLow boundary.
	DefaultLowStockThreshold = 10
)

// Repository serves product reads cache-first and product writes
// store-first. Cache population and invalidation never fail a request:
// with the cache down every operation still works against the store.
type Repository struct {
	store  Store
	cache  *cache.Adapter
	policy *InvalidationPolicy
	log    *logger.CtxZapLogger
	now    func() time.Time
}

func NewRepository(store Store, adapter *cache.Adapter, policy *InvalidationPolicy, log *logger.CtxZapLogger) *Repository {
	if log == nil {
		log = logger.NewNop()
	}
	return &Repository{
		store:  store,
		cache:  adapter,
		policy: policy,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetAll returns one page of the catalog. Identical page/limit/filter
// combinations share one cache entry; without an explicit status filter
// deleted rows are excluded.
func (r *Repository) GetAll(ctx context.Context, q ListQuery) (*Page, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if err := validateFilters(q.Filters); err != nil {
		return nil, err
	}

	key := listKey(page, limit, q.Filters)
	var cached Page
	if l := r.cache.Get(ctx, key, &cached); l.Hit && !l.Fallback {
		r.log.DebugCtx(ctx, "cache hit", zap.String("key", key))
		return &cached, nil
	}

	where, params := buildFilterWhere(q.Filters)

	var total int64
	if err := r.store.Read(ctx, &total, "SELECT COUNT(*) FROM products"+where, params); err != nil {
		return nil, err
	}

	params["limit"] = limit
	params["offset"] = (page - 1) * limit
	products := make([]Product, 0, limit)
	err = r.store.Read(ctx, &products,
		"SELECT * FROM products"+where+" ORDER BY created_at DESC, id DESC LIMIT @limit OFFSET @offset",
		params)
	if err != nil {
		return nil, err
	}
	fillStockLevels(products)

	result := &Page{Products: products, Pagination: NewPagination(page, limit, total)}
	r.cache.Set(ctx, key, result, cache.TTLShort)
	return result, nil
}

// GetByID returns one product. Soft-deleted rows read as not found.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	key := productKey(id)
	var cached Product
	if l := r.cache.Get(ctx, key, &cached); l.Hit && !l.Fallback {
		r.log.DebugCtx(ctx, "cache hit", zap.String("key", key))
		return &cached, nil
	}

	var rows []Product
	err := r.store.Read(ctx, &rows,
		"SELECT * FROM products WHERE id = @id AND status != @deleted",
		database.Params{"id": id, "deleted": string(StatusDeleted)})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound.WithMsgf("product %d not found", id)
	}

	p := rows[0]
	p.FillStockLevel()
	r.cache.Set(ctx, key, p, cache.TTLMedium)
	return &p, nil
}

// Search matches name, sku or description by substring, ranked exact name
// match first, then name prefix, then any substring. Results are capped by
// limit and never include deleted rows.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrValidation.WithMsg("search query must not be empty")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	key := searchKey(query, limit)
	var cached []Product
	if l := r.cache.Get(ctx, key, &cached); l.Hit && !l.Fallback {
		r.log.DebugCtx(ctx, "cache hit", zap.String("key", key))
		return cached, nil
	}

	pattern := "%" + query + "%"
	results := make([]Product, 0, limit)
	err := r.store.Read(ctx, &results, `
		SELECT * FROM products
		WHERE status != @deleted
		  AND (name LIKE @pattern OR sku LIKE @pattern OR description LIKE @pattern)
		ORDER BY
		  CASE
		    WHEN name = @query THEN 3
		    WHEN name LIKE @prefix THEN 2
		    ELSE 1
		  END DESC,
		  name ASC
		LIMIT @limit`,
		database.Params{
			"deleted": string(StatusDeleted),
			"pattern": pattern,
			"query":   query,
			"prefix":  query + "%",
			"limit":   limit,
		})
	if err != nil {
		return nil, err
	}
	fillStockLevels(results)

	r.cache.Set(ctx, key, results, cache.TTLShort)
	return results, nil
}

// GetLowStock lists non-deleted products at or below the threshold,
// lowest quantity first. The snapshot lives under its own short TTL class
// and is not swept on mutation.
func (r *Repository) GetLowStock(ctx context.Context, threshold int) ([]Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	key := lowStockKey(threshold)
	var cached []Product
	if l := r.cache.Get(ctx, key, &cached); l.Hit && !l.Fallback {
		r.log.DebugCtx(ctx, "cache hit", zap.String("key", key))
		return cached, nil
	}

	var results []Product
	err := r.store.Read(ctx, &results, `
		SELECT * FROM products
		WHERE status != @deleted AND quantity <= @threshold
		ORDER BY quantity ASC, name ASC`,
		database.Params{"deleted": string(StatusDeleted), "threshold": threshold})
	if err != nil {
		return nil, err
	}
	fillStockLevels(results)

	r.cache.Set(ctx, key, results, cache.TTLLowStock)
	return results, nil
}

// GetAnalytics returns the catalog aggregate as one cached payload:
// whole-catalog summary plus a per-category breakdown, deleted rows
// excluded everywhere.
func (r *Repository) GetAnalytics(ctx context.Context) (*Analytics, error) {
	var cached Analytics
	if l := r.cache.Get(ctx, analyticsCacheKey, &cached); l.Hit && !l.Fallback {
		r.log.DebugCtx(ctx, "cache hit", zap.String("key", analyticsCacheKey))
		return &cached, nil
	}

	deleted := database.Params{"deleted": string(StatusDeleted), "low": DefaultLowStockThreshold}

	var summaries []Summary
	err := r.store.Read(ctx, &summaries, `
		SELECT
		  COUNT(*)                                              AS total_products,
		  COALESCE(SUM(quantity), 0)                            AS total_stock,
		  COALESCE(SUM(quantity * price), 0)                    AS total_value,
		  COALESCE(AVG(quantity), 0)                            AS average_stock,
		  COALESCE(SUM(CASE WHEN quantity <= @low THEN 1 ELSE 0 END), 0) AS low_stock_count,
		  COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active_count
		FROM products
		WHERE status != @deleted`, deleted)
	if err != nil {
		return nil, err
	}

	var categories []CategoryStat
	err = r.store.Read(ctx, &categories, `
		SELECT
		  category,
		  COUNT(*)                           AS products,
		  COALESCE(SUM(quantity), 0)         AS stock,
		  COALESCE(SUM(quantity * price), 0) AS value
		FROM products
		WHERE status != @deleted
		GROUP BY category
		ORDER BY value DESC, category ASC`, deleted)
	if err != nil {
		return nil, err
	}

	result := &Analytics{Categories: categories}
	if len(summaries) > 0 {
		result.Summary = summaries[0]
	}
	r.cache.Set(ctx, analyticsCacheKey, result, cache.TTLMedium)
	return result, nil
}

// Create validates, inserts, invalidates the derived views and returns the
// stored record via a fresh read, which repopulates its cache entry.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	if in.Status == "" {
		in.Status = StatusActive
	}

	now := r.now()
	id, err := r.store.Insert(ctx, `
		INSERT INTO products (name, sku, category, description, quantity, price, cost, status, created_at, updated_at)
		VALUES (@name, @sku, @category, @description, @quantity, @price, @cost, @status, @now, @now)`,
		database.Params{
			"name":        in.Name,
			"sku":         in.SKU,
			"category":    in.Category,
			"description": in.Description,
			"quantity":    in.Quantity,
			"price":       round2(in.Price),
			"cost":        round2(in.Cost),
			"status":      string(in.Status),
			"now":         now,
		})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, ErrDuplicateSKU.WithMsgf("sku %q already exists", in.SKU)
		}
		return nil, err
	}

	r.policy.OnMutation(ctx, id)
	r.log.InfoCtx(ctx, "product created", zap.Int64("id", id), zap.String("sku", in.SKU))
	return r.GetByID(ctx, id)
}

// Update mutates the allow-listed fields of one product. A missing or
// deleted id fails with not found before any cache entry is touched; an
// input with no fields present is rejected as invalid.
func (r *Repository) Update(ctx context.Context, id int64, in UpdateInput) (*Product, error) {
	if in.empty() {
		return nil, ErrValidation.WithMsg("no updatable fields provided")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	set, params := buildUpdateSet(in)
	params["id"] = id
	params["deleted"] = string(StatusDeleted)
	params["now"] = r.now()

	affected, err := r.store.Write(ctx,
		"UPDATE products SET "+set+", updated_at = @now WHERE id = @id AND status != @deleted",
		params)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound.WithMsgf("product %d not found", id)
	}

	r.policy.OnMutation(ctx, id)
	r.log.InfoCtx(ctx, "product updated", zap.Int64("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft-deletes a product. Deleting an absent or already-deleted id
// reports false without sweeping anything.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.store.Write(ctx,
		"UPDATE products SET status = @deleted, updated_at = @now WHERE id = @id AND status != @deleted",
		database.Params{"deleted": string(StatusDeleted), "id": id, "now": r.now()})
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	r.policy.OnMutation(ctx, id)
	r.log.InfoCtx(ctx, "product deleted", zap.Int64("id", id))
	return true, nil
}

// BulkUpdate applies many updates in one transaction. Per-item problems
// (missing id, invalid fields) become error entries and never roll back
// the valid items; only a store failure aborts the whole batch. The cache
// is swept once, after commit, for the ids that changed.
func (r *Repository) BulkUpdate(ctx context.Context, items []BulkUpdateItem) (*BulkUpdateResult, error) {
	if len(items) == 0 {
		return nil, ErrValidation.WithMsg("no updates provided")
	}

	result := &BulkUpdateResult{Updated: []int64{}, Errors: []BulkUpdateError{}}
	err := r.store.Transaction(ctx, func(tx database.Conn) error {
		for _, item := range items {
			if item.Fields.empty() {
				result.Errors = append(result.Errors, BulkUpdateError{ID: item.ID, Message: "no updatable fields provided"})
				continue
			}
			if err := item.Fields.Validate(); err != nil {
				result.Errors = append(result.Errors, BulkUpdateError{ID: item.ID, Message: err.Error()})
				continue
			}

			set, params := buildUpdateSet(item.Fields)
			params["id"] = item.ID
			params["deleted"] = string(StatusDeleted)
			params["now"] = r.now()

			affected, err := tx.Write(ctx,
				"UPDATE products SET "+set+", updated_at = @now WHERE id = @id AND status != @deleted",
				params)
			if err != nil {
				return err
			}
			if affected == 0 {
				result.Errors = append(result.Errors, BulkUpdateError{ID: item.ID, Message: fmt.Sprintf("product %d not found", item.ID)})
				continue
			}
			result.Updated = append(result.Updated, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Updated) > 0 {
		r.policy.OnMutation(ctx, result.Updated...)
	}
	r.log.InfoCtx(ctx, "bulk update applied",
		zap.Int("updated", len(result.Updated)), zap.Int("failed", len(result.Errors)))
	return result, nil
}

// normalizePage clamps pagination input: page defaults to 1, limit to
// DefaultLimit, capped at MaxLimit. Negative values are invalid.
func normalizePage(page, limit int) (int, int, error) {
	if page < 0 || limit < 0 {
		return 0, 0, ErrValidation.WithMsg("page and limit must be positive")
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, nil
}

func validateFilters(f Filters) error {
	switch Status(f.Status) {
	case "", StatusActive, StatusInactive, StatusDeleted:
	default:
		return ErrValidation.WithMsgf("unknown status filter %q", f.Status)
	}
	if f.MinStock != nil && *f.MinStock < 0 {
		return ErrValidation.WithMsg("min_stock must not be negative")
	}
	return nil
}

// buildFilterWhere renders the allow-listed filters as a WHERE clause with
// named parameters. Without an explicit status filter, deleted rows are
// excluded.
func buildFilterWhere(f Filters) (string, database.Params) {
	clauses := make([]string, 0, 3)
	params := database.Params{}

	if f.Category != "" {
		clauses = append(clauses, "category = @category")
		params["category"] = f.Category
	}
	if f.Status != "" {
		clauses = append(clauses, "status = @status")
		params["status"] = f.Status
	} else {
		clauses = append(clauses, "status != @excluded")
		params["excluded"] = string(StatusDeleted)
	}
	if f.MinStock != nil {
		clauses = append(clauses, "quantity >= @min_stock")
		params["min_stock"] = *f.MinStock
	}

	return " WHERE " + strings.Join(clauses, " AND "), params
}

// buildUpdateSet renders the present fields as a SET clause in a fixed
// column order so equal inputs produce equal SQL.
func buildUpdateSet(in UpdateInput) (string, database.Params) {
	assigns := make([]string, 0, 7)
	params := database.Params{}

	if in.Name != nil {
		assigns = append(assigns, "name = @name")
		params["name"] = *in.Name
	}
	if in.Category != nil {
		assigns = append(assigns, "category = @category")
		params["category"] = *in.Category
	}
	if in.Description != nil {
		assigns = append(assigns, "description = @description")
		params["description"] = *in.Description
	}
	if in.Quantity != nil {
		assigns = append(assigns, "quantity = @quantity")
		params["quantity"] = *in.Quantity
	}
	if in.Price != nil {
		assigns = append(assigns, "price = @price")
		params["price"] = round2(*in.Price)
	}
	if in.Cost != nil {
		assigns = append(assigns, "cost = @cost")
		params["cost"] = round2(*in.Cost)
	}
	if in.Status != nil {
		assigns = append(assigns, "status = @new_status")
		params["new_status"] = string(*in.Status)
	}

	return strings.Join(assigns, ", "), params
}

func fillStockLevels(products []Product) {
	for i := range products {
		products[i].FillStockLevel()
	}
}
