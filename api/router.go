package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/config"
	"github.com/invgo/inventory-service/health"
	"github.com/invgo/inventory-service/httpx"
	"github.com/invgo/inventory-service/logger"
	"github.com/invgo/inventory-service/middleware"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Handler   *Handler
	Health    *health.Aggregator
	Cache     *cache.Adapter
	RateLimit config.RateLimitConfig
	Log       *logger.CtxZapLogger
	Mode      string
}

// NewRouter assembles the gin engine: middleware chain, health probe and
// the versioned product API.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestLog(deps.Log),
		middleware.Recovery(deps.Log),
	)
	if deps.RateLimit.Enabled && deps.Cache != nil {
		engine.Use(middleware.RateLimit(deps.Cache, deps.RateLimit.Limit, deps.RateLimit.Window, deps.Log))
	}
	engine.NoRoute(httpx.NoRouteHandler())
	engine.NoMethod(httpx.NoMethodHandler())

	engine.GET("/health", func(c *gin.Context) {
		res := deps.Health.Check(c.Request.Context())
		status := http.StatusOK
		if !res.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, res)
	})

	v1 := engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", deps.Handler.List)
			products.POST("", deps.Handler.Create)
			products.GET("/search", deps.Handler.Search)
			products.GET("/low-stock", deps.Handler.LowStock)
			products.PUT("/bulk", deps.Handler.BulkUpdate)
			products.GET("/:id", deps.Handler.Get)
			products.PUT("/:id", deps.Handler.Update)
			products.DELETE("/:id", deps.Handler.Delete)
		}
		v1.GET("/analytics", deps.Handler.Analytics)
	}

	return engine
}
