package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Data writes payload inside the {"data": ...} envelope.
func Data(c *gin.Context, status int, payload any) {
	c.JSON(status, gin.H{"data": payload})
}

// OK writes a 200 data envelope.
func OK(c *gin.Context, payload any) {
	Data(c, http.StatusOK, payload)
}
