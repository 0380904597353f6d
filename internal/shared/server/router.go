package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitgap-client/internal/shared/server/middleware"
	"fitgap-client/internal/shared/server/respond"
)

// Registrar attaches routes to the engine.
type Registrar interface {
	RegisterRoutes(r gin.IRouter)
}

// NewRouter constructs the loopback Gin engine with middleware, a health
// route and the given registrars.
func NewRouter(limits middleware.RateLimitConfig, registrars ...Registrar) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.LoopbackOnly(),
		middleware.RateLimit(limits),
	)
	r.GET("/healthz", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	for _, reg := range registrars {
		reg.RegisterRoutes(r)
	}
	return r
}

// Addr normalizes a listen address onto the loopback interface.
func Addr(addr string) string {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
		return "127.0.0.1:0"
	case !strings.Contains(addr, ":"):
		return net.JoinHostPort("127.0.0.1", addr)
	case addr[0] == ':':
		return "127.0.0.1" + addr
	}
	return addr
}
