// Package testkit wires a real session stack against an httptest server for
// package tests.
package testkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/session"
	"fitgap-client/internal/tokenstore"
)

// Navigator records navigation targets.
type Navigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *Navigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

// Paths returns every target in order.
func (n *Navigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Last returns the latest target or "".
func (n *Navigator) Last() string {
	paths := n.Paths()
	if len(paths) == 0 {
		return ""
	}
	return paths[len(paths)-1]
}

// Env is a memory-backed session stack talking to Server.
type Env struct {
	Server  *httptest.Server
	Store   *tokenstore.Store
	Gateway *gateway.Client
	Session *session.Manager
	Nav     *Navigator
}

// NewEnv starts handler and wires the stack the way the app does, including
// the 401 revocation hook.
func NewEnv(t *testing.T, handler http.Handler) *Env {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := tokenstore.New(tokenstore.NewMemoryTier(), tokenstore.NewMemoryTier())
	gw := gateway.New(gateway.Config{BaseURL: srv.URL, Tokens: store})
	nav := &Navigator{}
	mgr := session.NewManager(store, gw, nav)
	gw.OnUnauthorized(mgr.Revoke)
	return &Env{Server: srv, Store: store, Gateway: gw, Session: mgr, Nav: nav}
}

// Login stores an identity as if the OAuth handshake had completed.
func (e *Env) Login(t *testing.T, role session.Role) {
	t.Helper()
	user := tokenstore.UserSummary{ID: "u1", Role: string(role), Nickname: "tester"}
	if err := e.Store.SetIdentity(context.Background(), "access-token", user); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}
}
