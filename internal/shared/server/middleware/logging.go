package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"fitgap-client/internal/shared/telemetry"
)

// Logging emits a structured log per request. Query strings are left out
// because the onboarding redirect carries a bearer token there.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if state := c.GetString("sessionState"); state != "" {
			fields["session_state"] = state
		}
		telemetry.Info("request.complete", fields)
	}
}
