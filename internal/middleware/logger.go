package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/haritsetu/backend/internal/logger"
)

// CustomLoggerMiddleware logs one line per HTTP request through the app logger.
func CustomLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()

		// Process request
		c.Next()

		latency := time.Since(start)

		// Set by AuthMiddleware on protected routes
		userID := uint(0)
		if id, exists := c.Get(UserIDKey); exists {
			userID, _ = id.(uint)
		}

		entry := logger.WithRequest(c.GetString(RequestIDKey)).WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   latency.String(),
			"client_ip": c.ClientIP(),
			"user_id":   userID,
		})

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("[API] request failed")
		case status >= 400:
			entry.Warn("[API] request rejected")
		default:
			entry.Info("[API] request")
		}
	}
}
