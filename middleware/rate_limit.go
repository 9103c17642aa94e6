package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/httpx"
	"github.com/invgo/inventory-service/logger"
)

// RateLimit is a fixed-window per-client limiter backed by the shared
// cache. Counters fail open: a cache outage must never reject traffic.
func RateLimit(adapter *cache.Adapter, limit int64, window time.Duration, log *logger.CtxZapLogger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), bucket)

		count, err := adapter.Incr(ctx, key, 1)
		if err != nil {
			log.WarnCtx(ctx, "rate limiter degraded", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			adapter.Expire(ctx, key, window)
		}
		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httpx.ErrorResponse{
				Error: httpx.ErrorBody{
					Message: "rate limit exceeded",
					Code:    http.StatusTooManyRequests,
				},
			})
			return
		}
		c.Next()
	}
}
