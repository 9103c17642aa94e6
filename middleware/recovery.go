package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/invgo/inventory-service/httpx"
	"github.com/invgo/inventory-service/logger"
)

// Recovery turns a handler panic into an opaque 500 envelope instead of a
// dropped connection.
func Recovery(log *logger.CtxZapLogger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorCtx(c.Request.Context(), "panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, httpx.ErrorResponse{
					Error: httpx.ErrorBody{
						Message: "internal server error",
						Code:    http.StatusInternalServerError,
					},
				})
			}
		}()
		c.Next()
	}
}
