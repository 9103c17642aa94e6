package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/database"
	"github.com/invgo/inventory-service/logger"
	"github.com/invgo/inventory-service/testutil"
)

// countingStore wraps a Store and counts relational traffic, so tests can
// prove which operations were served from the cache.
type countingStore struct {
	inner   Store
	reads   int
	writes  int
	inserts int
}

func (s *countingStore) Read(ctx context.Context, dest interface{}, query string, params database.Params) error {
	s.reads++
	return s.inner.Read(ctx, dest, query, params)
}

func (s *countingStore) Write(ctx context.Context, query string, params database.Params) (int64, error) {
	s.writes++
	return s.inner.Write(ctx, query, params)
}

func (s *countingStore) Insert(ctx context.Context, query string, params database.Params) (int64, error) {
	s.inserts++
	return s.inner.Insert(ctx, query, params)
}

func (s *countingStore) Transaction(ctx context.Context, fn func(tx database.Conn) error) error {
	return s.inner.Transaction(ctx, fn)
}

type fixture struct {
	exec  *database.Executor
	store *countingStore
	cache *cache.Adapter
	redis *miniredis.Miniredis
	repo  *Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	exec := testutil.NewSQLiteStore(t)
	adapter, srv := testutil.NewCache(t)
	store := &countingStore{inner: exec}
	policy := NewInvalidationPolicy(adapter, logger.NewNop())
	return &fixture{
		exec:  exec,
		store: store,
		cache: adapter,
		redis: srv,
		repo:  NewRepository(store, adapter, policy, logger.NewNop()),
	}
}

func (f *fixture) seed(t *testing.T, name, sku, category string, quantity int, price float64, status string) int64 {
	return testutil.SeedProduct(t, f.exec, name, sku, category, quantity, price, status)
}

func TestGetByIDServesSecondReadFromCache(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "Widget", "W-1", "tools", 5, 9.99, "active")

	first, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", first.Name)
	assert.Equal(t, StockLow, first.StockLevel)
	assert.Equal(t, 1, f.store.reads)

	second, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.StockLevel, second.StockLevel)
	assert.Equal(t, 1, f.store.reads, "second read must not touch the store")
}

func TestGetByIDNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllPaginationMetadata(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.seed(t, fmt.Sprintf("Item %02d", i), fmt.Sprintf("SKU-%02d", i), "tools", 20, 5, "active")
	}

	page, err := f.repo.GetAll(context.Background(), ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Products, 10)
	assert.Equal(t, int64(25), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
	assert.Equal(t, 2, f.store.reads, "count plus page")

	again, err := f.repo.GetAll(context.Background(), ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, page.Pagination, again.Pagination)
	assert.Equal(t, 2, f.store.reads, "identical listing must come from cache")
}

func TestGetAllFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Hammer", "H-1", "tools", 100, 10, "active")
	f.seed(t, "Apple", "A-1", "food", 5, 1, "active")
	f.seed(t, "Gone", "G-1", "tools", 5, 1, "deleted")

	tools, err := f.repo.GetAll(context.Background(), ListQuery{Filters: Filters{Category: "tools"}})
	require.NoError(t, err)
	require.Len(t, tools.Products, 1)
	assert.Equal(t, "Hammer", tools.Products[0].Name)

	min := 50
	stocked, err := f.repo.GetAll(context.Background(), ListQuery{Filters: Filters{MinStock: &min}})
	require.NoError(t, err)
	require.Len(t, stocked.Products, 1)
	assert.Equal(t, "Hammer", stocked.Products[0].Name)

	// an explicit status filter can reach soft-deleted rows
	deleted, err := f.repo.GetAll(context.Background(), ListQuery{Filters: Filters{Status: "deleted"}})
	require.NoError(t, err)
	require.Len(t, deleted.Products, 1)
	assert.Equal(t, "Gone", deleted.Products[0].Name)
}

func TestGetAllRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.GetAll(context.Background(), ListQuery{Page: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.repo.GetAll(context.Background(), ListQuery{Filters: Filters{Status: "archived"}})
	assert.ErrorIs(t, err, ErrValidation)

	min := -1
	_, err = f.repo.GetAll(context.Background(), ListQuery{Filters: Filters{MinStock: &min}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchRanksExactThenPrefixThenSubstring(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Mega Widget", "M-1", "tools", 5, 1, "active")
	f.seed(t, "Widget", "W-1", "tools", 5, 1, "active")
	f.seed(t, "Widget Pro", "W-2", "tools", 5, 1, "active")
	f.seed(t, "Widget Old", "W-3", "tools", 5, 1, "deleted")

	results, err := f.repo.Search(context.Background(), "Widget", 10)
	require.NoError(t, err)
	require.Len(t, results, 3, "deleted rows never match")
	assert.Equal(t, "Widget", results[0].Name)
	assert.Equal(t, "Widget Pro", results[1].Name)
	assert.Equal(t, "Mega Widget", results[2].Name)

	reads := f.store.reads
	_, err = f.repo.Search(context.Background(), "Widget", 10)
	require.NoError(t, err)
	assert.Equal(t, reads, f.store.reads, "repeated search must come from cache")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.Search(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetLowStockOrdering(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Bolt", "B-1", "tools", 10, 1, "active")
	f.seed(t, "Nut", "N-1", "tools", 3, 1, "active")
	f.seed(t, "Screw", "S-1", "tools", 11, 1, "active")
	f.seed(t, "Ghost", "G-1", "tools", 1, 1, "deleted")

	low, err := f.repo.GetLowStock(context.Background(), 0) // defaults to 10
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Nut", low[0].Name)
	assert.Equal(t, "Bolt", low[1].Name)
	assert.Equal(t, StockLow, low[0].StockLevel)

	reads := f.store.reads
	_, err = f.repo.GetLowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, reads, f.store.reads)
}

func TestGetAnalytics(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "A-1", "tools", 5, 2, "active")
	f.seed(t, "B", "B-1", "tools", 20, 1, "active")
	f.seed(t, "C", "C-1", "food", 60, 1, "inactive")
	f.seed(t, "D", "D-1", "food", 99, 1, "deleted")

	a, err := f.repo.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.Summary.TotalProducts)
	assert.Equal(t, int64(85), a.Summary.TotalStock)
	assert.InDelta(t, 90.0, a.Summary.TotalValue, 0.001)
	assert.InDelta(t, 85.0/3.0, a.Summary.AverageStock, 0.001)
	assert.Equal(t, int64(1), a.Summary.LowStockCount)
	assert.Equal(t, int64(2), a.Summary.ActiveCount)

	require.Len(t, a.Categories, 2)
	assert.Equal(t, "food", a.Categories[0].Category, "highest value first")
	assert.Equal(t, int64(1), a.Categories[0].Products)

	reads := f.store.reads
	_, err = f.repo.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reads, f.store.reads, "aggregate must come from cache")
}

func TestCreateAppliesDefaultsAndRounding(t *testing.T) {
	f := newFixture(t)

	p, err := f.repo.Create(context.Background(), CreateInput{
		Name: "Widget", SKU: "W-1", Quantity: 5, Price: 9.999,
	})
	require.NoError(t, err)
	assert.Positive(t, p.ID)
	assert.Equal(t, DefaultCategory, p.Category)
	assert.Equal(t, StatusActive, p.Status)
	assert.InDelta(t, 10.0, p.Price, 0.001)
	assert.Equal(t, StockLow, p.StockLevel)
}

func TestCreateDuplicateSKU(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.Create(context.Background(), CreateInput{Name: "A", SKU: "DUP-1"})
	require.NoError(t, err)

	_, err = f.repo.Create(context.Background(), CreateInput{Name: "B", SKU: "DUP-1"})
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	var total int64
	require.NoError(t, f.exec.Read(context.Background(), &total,
		"SELECT COUNT(*) FROM products", database.Params{}))
	assert.Equal(t, int64(1), total, "the failed insert must leave no row behind")
}

func TestCreateInvalidatesListings(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "A-1", "tools", 5, 1, "active")

	before, err := f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), before.Pagination.Total)

	_, err = f.repo.Create(context.Background(), CreateInput{Name: "B", SKU: "B-1"})
	require.NoError(t, err)

	after, err := f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.Pagination.Total, "listing cache must be swept by the write")
}

func TestUpdateInvalidatesAndRereads(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "Widget", "W-1", "tools", 5, 1, "active")

	_, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	reads := f.store.reads

	qty := 40
	updated, err := f.repo.Update(context.Background(), id, UpdateInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Quantity)
	assert.Equal(t, StockMedium, updated.StockLevel)
	assert.Equal(t, reads+1, f.store.reads, "the record entry was swept, the re-read hits the store")

	fresh, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 40, fresh.Quantity)
}

func TestUpdateRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "Widget", "W-1", "tools", 5, 1, "active")

	_, err := f.repo.Update(context.Background(), id, UpdateInput{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateMissingIDLeavesCacheAlone(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Widget", "W-1", "tools", 5, 1, "active")

	_, err := f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	reads := f.store.reads

	qty := 1
	_, err = f.repo.Update(context.Background(), 9999, UpdateInput{Quantity: &qty})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, reads, f.store.reads, "a failed update must not sweep the cache")
}

func TestDeleteIsSoftAndIdempotent(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "Widget", "W-1", "tools", 5, 1, "active")

	ok, err := f.repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Products, "default listings exclude deleted rows")

	reads := f.store.reads
	ok, err = f.repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok, "second delete is a no-op")

	_, err = f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, reads, f.store.reads, "a no-op delete must not sweep the cache")
}

func TestBulkUpdateCommitsValidItems(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "A", "A-1", "tools", 5, 1, "active")
	b := f.seed(t, "B", "B-1", "tools", 5, 1, "active")
	c := f.seed(t, "C", "C-1", "tools", 5, 1, "active")

	// populate the per-record entries for all three
	for _, id := range []int64{a, b, c} {
		_, err := f.repo.GetByID(context.Background(), id)
		require.NoError(t, err)
	}

	qa, qb := 7, 8
	res, err := f.repo.BulkUpdate(context.Background(), []BulkUpdateItem{
		{ID: a, Fields: UpdateInput{Quantity: &qa}},
		{ID: b, Fields: UpdateInput{Quantity: &qb}},
		{ID: 9999, Fields: UpdateInput{Quantity: &qa}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b}, res.Updated)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(9999), res.Errors[0].ID)
	assert.Contains(t, res.Errors[0].Message, "not found")

	// only the updated ids are swept; the bystander entry survives
	assert.False(t, f.redis.Exists("test:"+productKey(a)))
	assert.False(t, f.redis.Exists("test:"+productKey(b)))
	assert.True(t, f.redis.Exists("test:"+productKey(c)))

	pa, err := f.repo.GetByID(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, 7, pa.Quantity)
	pb, err := f.repo.GetByID(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, 8, pb.Quantity)
}

// flakyStore injects a write failure on the Nth transactional write.
type flakyStore struct {
	Store
	failOn int
}

func (s *flakyStore) Transaction(ctx context.Context, fn func(tx database.Conn) error) error {
	return s.Store.Transaction(ctx, func(tx database.Conn) error {
		return fn(&flakyConn{Conn: tx, failOn: s.failOn})
	})
}

type flakyConn struct {
	database.Conn
	writes int
	failOn int
}

func (c *flakyConn) Write(ctx context.Context, query string, params database.Params) (int64, error) {
	c.writes++
	if c.writes == c.failOn {
		return 0, errors.New("store failure")
	}
	return c.Conn.Write(ctx, query, params)
}

func TestBulkUpdateRollbackLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "A", "A-1", "tools", 5, 1, "active")
	b := f.seed(t, "B", "B-1", "tools", 5, 1, "active")

	for _, id := range []int64{a, b} {
		_, err := f.repo.GetByID(context.Background(), id)
		require.NoError(t, err)
	}
	_, err := f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)

	repo := NewRepository(&flakyStore{Store: f.store, failOn: 2}, f.cache,
		NewInvalidationPolicy(f.cache, logger.NewNop()), logger.NewNop())

	qty := 9
	_, err = repo.BulkUpdate(context.Background(), []BulkUpdateItem{
		{ID: a, Fields: UpdateInput{Quantity: &qty}},
		{ID: b, Fields: UpdateInput{Quantity: &qty}},
	})
	require.Error(t, err)

	// every cached entry survives the rollback
	assert.True(t, f.redis.Exists("test:"+productKey(a)))
	assert.True(t, f.redis.Exists("test:"+productKey(b)))

	// and the first item's write did not outlive the transaction
	var qa int
	require.NoError(t, f.exec.Read(context.Background(), &qa,
		"SELECT quantity FROM products WHERE id = @id", database.Params{"id": a}))
	assert.Equal(t, 5, qa)

	reads := f.store.reads
	cached, err := f.repo.GetAll(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, cached.Products, 2)
	assert.Equal(t, reads, f.store.reads, "the listing still serves from cache")
}

func TestBulkUpdateRejectsEmptyBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.repo.BulkUpdate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkUpdateRecordsPerItemValidationErrors(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "A", "A-1", "tools", 5, 1, "active")

	qty := 9
	res, err := f.repo.BulkUpdate(context.Background(), []BulkUpdateItem{
		{ID: a, Fields: UpdateInput{Quantity: &qty}},
		{ID: a, Fields: UpdateInput{}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, res.Updated)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "no updatable fields")
}

func TestRepositorySurvivesCacheOutage(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, "Widget", "W-1", "tools", 5, 1, "active")

	// establish the cache connection, then take the server down
	_, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	f.redis.Close()

	p, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)

	qty := 9
	updated, err := f.repo.Update(context.Background(), id, UpdateInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)
}
