package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLoopbackOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(), LoopbackOnly())
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	tests := []struct {
		name   string
		remote string
		host   string
		path   string
		want   int
	}{
		{name: "ipv4 loopback", remote: "127.0.0.1:50000", host: "127.0.0.1:8765", path: "/healthz", want: http.StatusOK},
		{name: "ipv6 loopback", remote: "[::1]:50000", host: "localhost:8765", path: "/healthz", want: http.StatusOK},
		{name: "remote client", remote: "10.0.0.5:50000", host: "127.0.0.1:8765", path: "/healthz", want: http.StatusForbidden},
		{name: "rebinding host", remote: "127.0.0.1:50000", host: "evil.example:8765", path: "/healthz", want: http.StatusForbidden},
		{name: "panic recovered", remote: "127.0.0.1:50000", host: "127.0.0.1:8765", path: "/boom", want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.RemoteAddr = tt.remote
		req.Host = tt.host
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, resp.Code)
		}
	}
}
