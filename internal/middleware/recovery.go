package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const internalErrorMessage = "An error occurred on the server"

// Recovery turns a panic into a generic 500 that carries only a trace id.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				traceID := uuid.NewString()
				logger.Error("panic recovered",
					zap.String("traceId", traceID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Success: false,
					Message: internalErrorMessage,
					TraceID: traceID,
				})
			}
		}()
		c.Next()
	}
}
