package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"fitgap-client/internal/shared/server/respond"
	"fitgap-client/internal/shared/telemetry"
)

const msgInternal = "요청 처리 중 오류가 발생했습니다."

// Recovery turns a handler panic into a 500 envelope so the browser page can
// show a message instead of a dropped connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("callback.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"panic":      rec,
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", msgInternal, nil)
		}()
		c.Next()
	}
}
