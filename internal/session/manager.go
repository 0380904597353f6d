// Package session drives the identity state machine:
// anonymous -> pending_onboarding -> authenticated -> anonymous.
package session

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fitgap-client/internal/gateway"
	sharedauth "fitgap-client/internal/shared/auth"
	"fitgap-client/internal/shared/metrics"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/tokenstore"
)

// Manager is the single owner of session state. Views never read tokens directly.
type Manager struct {
	store *tokenstore.Store
	api   API
	nav   Navigator
	now   func() time.Time

	mu        sync.Mutex
	state     State
	listeners map[int]func(Transition)
	nextID    int

	generation atomic.Uint64
	revokeMu   sync.Mutex
}

// NewManager builds a Manager. The initial state is anonymous until Current is called.
func NewManager(store *tokenstore.Store, api API, nav Navigator) *Manager {
	return &Manager{
		store:     store,
		api:       api,
		nav:       nav,
		now:       time.Now,
		state:     StateAnonymous,
		listeners: make(map[int]func(Transition)),
	}
}

// State returns the last known state without touching the store.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Generation increases on every transition. Views compare it to detect that the
// session changed while a request was in flight.
func (m *Manager) Generation() uint64 {
	return m.generation.Load()
}

// Subscribe registers fn for every transition and returns its unsubscribe func.
func (m *Manager) Subscribe(fn func(Transition)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setState(to State) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return
	}
	m.state = to
	m.generation.Add(1)
	listeners := make([]func(Transition), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	metrics.IncSessionTransition(string(to))
	telemetry.Info("session.transition", map[string]any{"from": string(from), "to": string(to)})
	tr := Transition{From: from, To: to}
	for _, fn := range listeners {
		fn(tr)
	}
}

func (m *Manager) navigate(ctx context.Context, path string) {
	if m.nav != nil {
		m.nav.Navigate(ctx, path)
	}
}

// Current derives the state from a fresh read of the token store.
// accessToken supersedes authToken.
func (m *Manager) Current(ctx context.Context) (Snapshot, error) {
	access, err := m.store.AccessToken(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if access != "" {
		user, err := m.userFor(ctx, access)
		if err != nil {
			return Snapshot{}, err
		}
		m.setState(StateAuthenticated)
		return Snapshot{State: StateAuthenticated, User: user}, nil
	}
	auth, err := m.store.AuthToken(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if auth != "" {
		m.setState(StatePendingOnboarding)
		return Snapshot{State: StatePendingOnboarding}, nil
	}
	m.setState(StateAnonymous)
	return Snapshot{State: StateAnonymous}, nil
}

// userFor returns the stored user summary, filling gaps from the token claims.
func (m *Manager) userFor(ctx context.Context, access string) (tokenstore.UserSummary, error) {
	user, _, err := m.store.User(ctx)
	if err != nil {
		return tokenstore.UserSummary{}, err
	}
	if user.ID != "" && user.Role != "" {
		return user, nil
	}
	return m.fillFromClaims(user, access), nil
}

func (m *Manager) userFromClaims(access string) (tokenstore.UserSummary, error) {
	claims, err := sharedauth.DecodeClaims(access)
	if err != nil {
		return tokenstore.UserSummary{}, err
	}
	return tokenstore.UserSummary{ID: claims.Subject, Role: claims.Role, Nickname: claims.Nickname}, nil
}

// RequireAuthenticated is the mount guard of every authenticated view. It must
// run before any data fetch. Without a live access token every stored token is
// cleared, including an unfinished onboarding authToken, and the front end is
// sent to login.
func (m *Manager) RequireAuthenticated(ctx context.Context) (tokenstore.UserSummary, error) {
	access, err := m.store.AccessToken(ctx)
	if err != nil {
		return tokenstore.UserSummary{}, err
	}
	if access != "" {
		if claims, err := sharedauth.DecodeClaims(access); err == nil && claims.Expired(m.now()) {
			telemetry.Info("session.access_expired", map[string]any{"sub": claims.Subject})
			access = ""
		}
	}
	if access == "" {
		if err := m.Terminate(ctx, PathLogin); err != nil {
			telemetry.Warn("session.clear_failed", map[string]any{"error": err})
		}
		return tokenstore.UserSummary{}, ErrUnauthenticated
	}
	user, err := m.userFor(ctx, access)
	if err != nil {
		return tokenstore.UserSummary{}, err
	}
	m.setState(StateAuthenticated)
	return user, nil
}

// RequireRole runs RequireAuthenticated and then checks the account role.
// A role mismatch is an inline error, not a redirect. An unknown role passes.
func (m *Manager) RequireRole(ctx context.Context, role Role) (tokenstore.UserSummary, error) {
	user, err := m.RequireAuthenticated(ctx)
	if err != nil {
		return user, err
	}
	if user.Role != "" && !strings.EqualFold(user.Role, string(role)) {
		return user, &RoleError{Required: role, Actual: Role(user.Role)}
	}
	return user, nil
}

// UpdateUser rewrites the stored user summary in place.
func (m *Manager) UpdateUser(ctx context.Context, fn func(*tokenstore.UserSummary)) error {
	access, err := m.store.AccessToken(ctx)
	if err != nil {
		return err
	}
	if access == "" {
		return ErrUnauthenticated
	}
	user, err := m.userFor(ctx, access)
	if err != nil {
		return err
	}
	fn(&user)
	return m.store.SetUser(ctx, user)
}

// Terminate clears every token, moves to anonymous and navigates to path.
// Navigation and the state change happen even when clearing fails.
func (m *Manager) Terminate(ctx context.Context, path string) error {
	err := m.store.ClearAll(ctx)
	m.setState(StateAnonymous)
	m.navigate(ctx, path)
	return err
}

// Revoke handles a server-side revocation observed as a 401. Concurrent 401s
// from one fan-out terminate the session once.
func (m *Manager) Revoke(ctx context.Context) {
	m.revokeMu.Lock()
	defer m.revokeMu.Unlock()
	if m.State() == StateAnonymous {
		if access, err := m.store.AccessToken(ctx); err == nil && access == "" {
			return
		}
	}
	telemetry.Warn("session.revoked", nil)
	if err := m.Terminate(ctx, PathLogin); err != nil {
		telemetry.Error("session.clear_failed", map[string]any{"error": err})
	}
}

// Logout tears the session down. The server call is best effort; the local
// teardown always happens.
func (m *Manager) Logout(ctx context.Context) error {
	opts := gateway.Options{Route: "/api/auth/logout"}
	if access, err := m.store.AccessToken(ctx); err == nil && access != "" {
		opts.Auth = gateway.AuthBearer
		opts.Bearer = access
	}
	if err := m.api.Do(ctx, http.MethodPost, "/api/auth/logout", opts, nil); err != nil {
		telemetry.Warn("session.logout_remote_failed", map[string]any{"error": err})
	}
	return m.Terminate(ctx, PathHome)
}
