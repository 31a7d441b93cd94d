package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/logger"
	"github.com/sirupsen/logrus"
)

// GinLogger writes one structured access-log line per request.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := logger.InfoLogger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if userID, ok := c.Get("user_id"); ok {
			entry = entry.WithField("user_id", userID)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.ErrorLogger.WithFields(entry.Data).Error("request failed")
		case status >= 400:
			logger.WarnLogger.WithFields(entry.Data).Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}
