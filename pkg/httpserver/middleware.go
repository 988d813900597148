package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingMiddleware creates a gin middleware for request/response logging.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		logger.Debug("HTTP request started",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_addr", c.ClientIP()))

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		if status >= http.StatusInternalServerError || len(c.Errors) > 0 {
			logger.Error("HTTP request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Duration("duration", duration),
				zap.Int("status_code", status),
				zap.String("errors", c.Errors.String()))
			return
		}

		logger.Info("HTTP request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Int("status_code", status))
	}
}

// RecoveryMiddleware turns handler panics into 500 responses.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.Error("HTTP handler panicked",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", err))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// BodyLimitMiddleware wraps request bodies in http.MaxBytesReader.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
