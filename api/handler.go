// Package api exposes the product repository over HTTP.
package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/invgo/inventory-service/httpx"
	"github.com/invgo/inventory-service/logger"
	"github.com/invgo/inventory-service/product"
)

// Handler binds the product operations to gin routes.
type Handler struct {
	repo *product.Repository
	log  *logger.CtxZapLogger
}

func NewHandler(repo *product.Repository, log *logger.CtxZapLogger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{repo: repo, log: log}
}

type listRequest struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Status   string `form:"status"`
	MinStock *int   `form:"min_stock"`
}

// List serves GET /api/v1/products.
func (h *Handler) List(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.HandleError(c, h.log, product.ErrValidation.WithMsg(err.Error()))
		return
	}

	page, err := h.repo.GetAll(c.Request.Context(), product.ListQuery{
		Page:  req.Page,
		Limit: req.Limit,
		Filters: product.Filters{
			Category: req.Category,
			Status:   req.Status,
			MinStock: req.MinStock,
		},
	})
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkPageJSON(c, page.Products, page.Pagination)
}

// Get serves GET /api/v1/products/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, p)
}

// Create serves POST /api/v1/products.
func (h *Handler) Create(c *gin.Context) {
	var in product.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.HandleError(c, h.log, product.ErrValidation.WithMsg(err.Error()))
		return
	}
	p, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.CreatedJSON(c, p)
}

// Update serves PUT /api/v1/products/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	var in product.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.HandleError(c, h.log, product.ErrValidation.WithMsg(err.Error()))
		return
	}
	p, err := h.repo.Update(c.Request.Context(), id, in)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, p)
}

// Delete serves DELETE /api/v1/products/:id. Deleting an absent product is
// a no-op, reported in the payload rather than as an error.
func (h *Handler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, gin.H{"deleted": deleted})
}

type bulkRequest struct {
	Updates []product.BulkUpdateItem `json:"updates"`
}

// BulkUpdate serves PUT /api/v1/products/bulk.
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.HandleError(c, h.log, product.ErrValidation.WithMsg(err.Error()))
		return
	}
	res, err := h.repo.BulkUpdate(c.Request.Context(), req.Updates)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, res)
}

// Search serves GET /api/v1/products/search?q=...&limit=...
func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	results, err := h.repo.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, results)
}

// LowStock serves GET /api/v1/products/low-stock?threshold=...
func (h *Handler) LowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.Query("threshold"))
	results, err := h.repo.GetLowStock(c.Request.Context(), threshold)
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, results)
}

// Analytics serves GET /api/v1/analytics.
func (h *Handler) Analytics(c *gin.Context) {
	a, err := h.repo.GetAnalytics(c.Request.Context())
	if err != nil {
		httpx.HandleError(c, h.log, err)
		return
	}
	httpx.OkJSON(c, a)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, product.ErrValidation.WithMsgf("invalid product id %q", c.Param("id"))
	}
	return id, nil
}
