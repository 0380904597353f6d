package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitgap-client/internal/shared/server/respond"
)

// LoopbackOnly rejects requests that did not originate on this machine or
// that name a foreign Host, which blocks DNS-rebinding pages from driving the
// callback endpoints.
func LoopbackOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLoopbackAddr(c.Request.RemoteAddr) {
			respond.Error(c, http.StatusForbidden, "forbidden", "loopback clients only", nil)
			return
		}
		if !isLoopbackHost(c.Request.Host) {
			respond.Error(c, http.StatusForbidden, "forbidden", "unexpected host", nil)
			return
		}
		c.Next()
	}
}

func isLoopbackAddr(remote string) bool {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isLoopbackHost(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
