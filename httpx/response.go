// Package httpx provides the unified HTTP response envelope and the
// mapping from layered errors to status codes.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/invgo/inventory-service/errcode"
	"github.com/invgo/inventory-service/logger"
)

// Response is the success envelope. Pagination is present only on
// listing endpoints.
type Response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody carries the user-facing message and the layered error code.
type ErrorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// OkJSON writes a 200 success envelope.
func OkJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// CreatedJSON writes a 201 success envelope.
func CreatedJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// OkPageJSON writes a 200 success envelope with pagination metadata.
func OkPageJSON(c *gin.Context, data interface{}, pagination interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: pagination})
}

// HandleError maps an error to the failure envelope. Layered errors carry
// their own HTTP status and code; anything else becomes an opaque 500 so
// internals never leak to the client.
func HandleError(c *gin.Context, log *logger.CtxZapLogger, err error) {
	if err == nil {
		return
	}
	if log == nil {
		log = logger.NewNop()
	}
	ctx := c.Request.Context()

	var layered *errcode.LayeredError
	if errors.As(err, &layered) {
		status := layered.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.ErrorCtx(ctx, "request failed",
				zap.Int("error_code", layered.Code()), zap.Error(err))
		} else {
			log.WarnCtx(ctx, "request rejected",
				zap.Int("error_code", layered.Code()), zap.String("reason", layered.Message()))
		}
		c.JSON(status, ErrorResponse{
			Error: ErrorBody{Message: layered.Message(), Code: layered.Code()},
		})
		return
	}

	log.ErrorCtx(ctx, "unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{Message: "internal server error", Code: http.StatusInternalServerError},
	})
}

// NoRouteHandler returns the 404 handler for unknown paths.
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorBody{
				Message: "route not found: " + c.Request.Method + " " + c.Request.URL.Path,
				Code:    http.StatusNotFound,
			},
		})
	}
}

// NoMethodHandler returns the 405 handler.
func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
			Error: ErrorBody{
				Message: "method not allowed: " + c.Request.Method + " " + c.Request.URL.Path,
				Code:    http.StatusMethodNotAllowed,
			},
		})
	}
}
