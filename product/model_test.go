package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockLevelFor(t *testing.T) {
	assert.Equal(t, StockLow, StockLevelFor(0))
	assert.Equal(t, StockLow, StockLevelFor(10))
	assert.Equal(t, StockMedium, StockLevelFor(11))
	assert.Equal(t, StockMedium, StockLevelFor(50))
	assert.Equal(t, StockHigh, StockLevelFor(51))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, int64(25), p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPaginationEdges(t *testing.T) {
	first := NewPagination(1, 10, 25)
	assert.False(t, first.HasPrev)
	assert.True(t, first.HasNext)

	last := NewPagination(3, 10, 25)
	assert.True(t, last.HasPrev)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)

	exact := NewPagination(1, 10, 20)
	assert.Equal(t, 2, exact.TotalPages)
}

func TestCreateInputValidate(t *testing.T) {
	valid := CreateInput{Name: "Widget", SKU: "W-1", Quantity: 5, Price: 9.99}
	assert.NoError(t, valid.Validate())

	missing := CreateInput{SKU: "W-1"}
	assert.ErrorIs(t, missing.Validate(), ErrValidation)

	negative := CreateInput{Name: "Widget", SKU: "W-1", Quantity: -1}
	assert.ErrorIs(t, negative.Validate(), ErrValidation)

	badStatus := CreateInput{Name: "Widget", SKU: "W-1", Status: "archived"}
	assert.ErrorIs(t, badStatus.Validate(), ErrValidation)
}

func TestUpdateInputValidate(t *testing.T) {
	qty := -3
	in := UpdateInput{Quantity: &qty}
	assert.ErrorIs(t, in.Validate(), ErrValidation)

	assert.True(t, UpdateInput{}.empty())
	name := "New"
	assert.False(t, UpdateInput{Name: &name}.empty())
}
