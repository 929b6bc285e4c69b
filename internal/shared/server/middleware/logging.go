package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/telemetry"
)

// Logging emits a structured log per request. Handlers may set "analysisId" and
// "provider" on the context to have them included.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString("analysisId"); id != "" {
			fields["analysis_id"] = id
		}
		if provider := c.GetString("provider"); provider != "" {
			fields["provider"] = provider
		}
		telemetry.Info("request.complete", fields)
	}
}
