// Package gateway performs typed requests against the fit-gap API and unwraps
// its uniform {data, error} envelope.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"fitgap-client/internal/shared/metrics"
	"fitgap-client/internal/shared/telemetry"
)

const maxResponseBytes = 4 << 20

// AuthMode selects which credential, if any, is attached to a request.
type AuthMode int

const (
	// AuthNone sends no Authorization header.
	AuthNone AuthMode = iota
	// AuthAccess attaches the stored access token, read fresh per request.
	AuthAccess
	// AuthBearer attaches Options.Bearer (the onboarding authToken).
	AuthBearer
)

// Options describes one request.
type Options struct {
	Body     any
	Auth     AuthMode
	Bearer   string
	Fallback string
	// Route is the templated path used as a metrics label. Defaults to the request path.
	Route string
}

// Doer is implemented by *Client and by test doubles.
type Doer interface {
	Do(ctx context.Context, method, path string, opts Options, out any) error
}

// TokenReader yields the current access token, or "" when there is none.
type TokenReader interface {
	AccessToken(ctx context.Context) (string, error)
}

// Config wires a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Tokens    TokenReader
	Transport http.RoundTripper
}

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
	limiter   *rate.Limiter
	tokens    TokenReader

	mu             sync.RWMutex
	onUnauthorized func(context.Context)
}

// New builds a Client.
func New(cfg Config) *Client {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   timeout,
		transport: transport,
		limiter:   rate.NewLimiter(limit, burst),
		tokens:    cfg.Tokens,
	}
}

// OnUnauthorized registers the hook run when an access-token request gets a 401.
func (c *Client) OnUnauthorized(fn func(context.Context)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Do sends one request and decodes envelope.data into out (when out is non-nil).
// Every expected failure is returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, opts Options, out any) error {
	route := opts.Route
	if route == "" {
		route = path
	}
	start := time.Now()
	requestID := uuid.NewString()

	status, err := c.do(ctx, method, path, requestID, opts, out)

	kind := ""
	if err != nil {
		kind = string(KindOf(err))
	}
	metrics.ObserveRequest(method, route, kind, time.Since(start))
	fields := map[string]any{
		"request_id":  requestID,
		"method":      method,
		"route":       route,
		"status":      status,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if err != nil {
		fields["kind"] = kind
		fields["error"] = err
		telemetry.Warn("gateway.request_failed", fields)
	} else {
		telemetry.Info("gateway.request", fields)
	}

	if status == http.StatusUnauthorized && opts.Auth == AuthAccess {
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook(ctx)
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path, requestID string, opts Options, out any) (int, error) {
	fallback := opts.Fallback

	var bearer string
	switch opts.Auth {
	case AuthAccess:
		if c.tokens != nil {
			tok, err := c.tokens.AccessToken(ctx)
			if err != nil {
				return 0, &Error{Kind: KindUnknown, Message: fallback, Err: err}
			}
			bearer = tok
		}
		if bearer == "" {
			return 0, &Error{Kind: KindUnauthenticated, Message: fallback}
		}
	case AuthBearer:
		bearer = opts.Bearer
		if bearer == "" {
			return 0, &Error{Kind: KindUnauthenticated, Message: fallback}
		}
	}

	var body io.Reader
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, &Error{Kind: KindValidation, Message: fallback, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, &Error{Kind: KindUnknown, Message: fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, &Error{Kind: KindNetwork, Message: fallback, Err: err}
	}

	resp, err := c.httpClient(bearer).Do(req)
	if err != nil {
		return 0, &Error{Kind: KindNetwork, Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: fallback, Err: err}
	}

	var env envelope
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		if decodeErr == nil && env.Error != nil && strings.TrimSpace(env.Error.Message) != "" {
			msg = env.Error.Message
		}
		return resp.StatusCode, &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return resp.StatusCode, &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: fallback, Err: decodeErr}
	}
	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: fallback, Err: err}
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) httpClient(bearer string) *http.Client {
	if bearer == "" {
		return &http.Client{Transport: c.transport, Timeout: c.timeout}
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}),
			Base:   c.transport,
		},
		Timeout: c.timeout,
	}
}

// IsCanceled reports whether err came from the caller's context rather than the server.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
