// Package callback runs the loopback HTTP endpoint the identity provider
// redirects the browser to. It hands the redirect to the session manager and
// reports the outcome to the waiting login command.
package callback

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/session"
	"fitgap-client/internal/shared/server"
	"fitgap-client/internal/shared/server/middleware"
	"fitgap-client/internal/shared/server/respond"
	"fitgap-client/internal/shared/telemetry"
)

const msgLoginFailed = "로그인 처리 실패"

// Exchanger completes an identity-provider redirect.
type Exchanger interface {
	HandleCallback(ctx context.Context, rawURL string) (session.State, error)
}

// StateVerifier accepts each issued state once.
type StateVerifier interface {
	Consume(state string) bool
}

// Result is the outcome of one redirect.
type Result struct {
	State session.State
	Err   error
}

// Server serves the callback routes.
type Server struct {
	exchanger Exchanger
	states    StateVerifier

	results chan Result
	once    sync.Once
	engine  *gin.Engine
}

// New builds a Server. A nil verifier skips the state check, which is only
// correct for redirects not started by this process.
func New(ex Exchanger, states StateVerifier) *Server {
	s := &Server{exchanger: ex, states: states, results: make(chan Result, 1)}
	s.engine = server.NewRouter(middleware.RateLimitConfig{
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost {
				return "CALLBACK"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":  {Rate: 5, Burst: 20},
			"CALLBACK": {Rate: 1, Burst: 3},
		},
	}, s)
	return s
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Results delivers the first completed redirect.
func (s *Server) Results() <-chan Result {
	return s.results
}

func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/login/callback", s.page)
	r.POST("/login/callback", s.complete)
	r.GET("/onboarding", s.onboarding)
}

type completeRequest struct {
	Fragment string `json:"fragment"`
	Query    string `json:"query"`
}

type completeResponse struct {
	State session.State `json:"state"`
	Next  string        `json:"next"`
}

func (s *Server) page(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Referrer-Policy", "no-referrer")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(callbackPage))
}

func (s *Server) complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid callback payload", nil)
		return
	}
	fragment := strings.TrimPrefix(strings.TrimSpace(req.Fragment), "#")
	query := strings.TrimPrefix(strings.TrimSpace(req.Query), "?")

	fragmentValues, _ := url.ParseQuery(fragment)
	queryValues, _ := url.ParseQuery(query)
	state := fragmentValues.Get("state")
	if state == "" {
		state = queryValues.Get("state")
	}
	if !s.verify(c, state) {
		return
	}

	raw := (&url.URL{Scheme: "http", Host: "localhost", Path: "/login/callback", RawQuery: query, Fragment: fragment}).String()
	s.finish(c, raw)
}

func (s *Server) onboarding(c *gin.Context) {
	token := strings.TrimSpace(c.Query("authToken"))
	if token == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "authToken is required", nil)
		return
	}
	if !s.verify(c, c.Query("state")) {
		return
	}
	raw := (&url.URL{Scheme: "http", Host: "localhost", Path: "/onboarding", RawQuery: url.Values{"authToken": {token}}.Encode()}).String()
	s.finish(c, raw)
}

// verify consumes state for a request carrying a credential. A rejected
// request is answered with 400 and leaves the waiting login untouched.
func (s *Server) verify(c *gin.Context, state string) bool {
	if s.states == nil || s.states.Consume(state) {
		return true
	}
	telemetry.Warn("callback.invalid_state", map[string]any{"path": c.Request.URL.Path})
	respond.Error(c, http.StatusBadRequest, "invalid_state", "invalid or expired state", nil)
	return false
}

func (s *Server) finish(c *gin.Context, rawURL string) {
	state, err := s.exchanger.HandleCallback(c.Request.Context(), rawURL)
	c.Set("sessionState", string(state))
	s.deliver(Result{State: state, Err: err})
	if err != nil {
		status := http.StatusBadGateway
		if gateway.KindOf(err) == gateway.KindValidation || errors.Is(err, session.ErrMissingIDToken) {
			status = http.StatusBadRequest
		}
		respond.Error(c, status, "login_failed", gateway.Message(err, msgLoginFailed), nil)
		return
	}
	next := session.PathHome
	if state == session.StatePendingOnboarding {
		next = session.PathOnboarding
	}
	respond.OK(c, completeResponse{State: state, Next: next})
}

// deliver keeps the first result; later redirects are served but not reported.
func (s *Server) deliver(res Result) {
	s.once.Do(func() {
		s.results <- res
	})
}

// Serve runs the server on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	telemetry.Info("callback.listening", map[string]any{"addr": ln.Addr().String()})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
