package respond

import (
	"github.com/gin-gonic/gin"

	"fitgap-client/internal/shared/telemetry"
)

// ErrorBody mirrors the API envelope error so the callback page can share
// the gateway's error rendering.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs and aborts with a standardized error response.
func Error(c *gin.Context, status int, code, message string, details any) {
	telemetry.Warn("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
