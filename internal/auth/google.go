// Package auth builds the identity-provider login URL and tracks the
// one-shot state values handed out with it.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var ErrNotConfigured = errors.New("google login not configured: set GOOGLE_CLIENT_ID and GOOGLE_REDIRECT_URL")

// GoogleLogin issues implicit-flow login URLs whose id_token comes back in
// the redirect fragment.
type GoogleLogin struct {
	oauthConfig *oauth2.Config
	stateTTL    time.Duration
	states      *stateStore
}

// NewGoogleLogin builds a GoogleLogin. No client secret is needed because the
// backend, not this client, verifies the id_token.
func NewGoogleLogin(clientID, redirectURL string) *GoogleLogin {
	return &GoogleLogin{
		oauthConfig: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      []string{"openid", "email", "profile"},
			Endpoint:    google.Endpoint,
		},
		stateTTL: 5 * time.Minute,
		states:   newStateStore(time.Now),
	}
}

// RedirectURL reports where the provider sends the browser back to.
func (g *GoogleLogin) RedirectURL() string {
	return g.oauthConfig.RedirectURL
}

// Start returns a login URL and the state value that must come back with it.
func (g *GoogleLogin) Start() (authURL, state string, err error) {
	if g.oauthConfig.ClientID == "" || g.oauthConfig.RedirectURL == "" {
		return "", "", ErrNotConfigured
	}
	state = uuid.NewString()
	g.states.put(state, g.states.now().Add(g.stateTTL))

	authURL = g.oauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "id_token"),
		oauth2.SetAuthURLParam("nonce", uuid.NewString()),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return authURL, state, nil
}

// Consume reports whether state was issued by Start and is still valid. A
// state is accepted at most once.
func (g *GoogleLogin) Consume(state string) bool {
	return g.states.consume(state)
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
	now   func() time.Time
}

func newStateStore(now func() time.Time) *stateStore {
	return &stateStore{items: make(map[string]time.Time), now: now}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	s.items[state] = exp
	s.mu.Unlock()
}

func (s *stateStore) consume(state string) bool {
	if state == "" {
		return false
	}
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	return !s.now().After(exp)
}
