package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/logs"
)

// RequestLogger writes one JSON line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := "INFO"
		switch {
		case status >= 500:
			level = "ERROR"
		case status >= 400:
			level = "WARN"
		}

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     status,
			"durationMs": time.Since(start).Milliseconds(),
		}
		if id, ok := CurrentUserID(c); ok {
			fields["userID"] = id
		}
		logs.LogJSON(level, "Request handled", fields)
	}
}
