package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cinetrack/cinetrack/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an ID and logs method, path,
// status and duration once the handler chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Health checks are noise.
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := []logger.Field{
			logger.String("request_id", requestID),
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.String("duration", duration.String()),
			logger.String("ip", c.ClientIP()),
		}
		if status := c.Writer.Status(); status >= 500 {
			logger.ErrorStructured("request failed", fields...)
		} else {
			logger.DebugStructured("request", fields...)
		}
	}
}

// ErrorLogger surfaces errors handlers attached to the gin context.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.ErrorStructured("handler error",
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
				logger.Err("error", err.Err),
			)
		}
	}
}
