package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/tokenstore"
)

type exchangeRequest struct {
	IDToken string `json:"id_token"`
}

type grantResponse struct {
	RequiresOnboarding bool       `json:"requires_onboarding"`
	AuthToken          string     `json:"auth_token"`
	AccessToken        string     `json:"access_token"`
	UserID             gateway.ID `json:"user_id"`
	Role               string     `json:"role"`
	Nickname           string     `json:"nickname"`
	User               *struct {
		ID       gateway.ID `json:"id"`
		Role     string     `json:"role"`
		Nickname string     `json:"nickname"`
	} `json:"user"`
}

func (g grantResponse) summary() tokenstore.UserSummary {
	u := tokenstore.UserSummary{ID: g.UserID.String(), Role: g.Role, Nickname: g.Nickname}
	if g.User != nil {
		if u.ID == "" {
			u.ID = g.User.ID.String()
		}
		if u.Role == "" {
			u.Role = g.User.Role
		}
		if u.Nickname == "" {
			u.Nickname = g.User.Nickname
		}
	}
	return u
}

// CallbackParams are the credentials an identity-provider redirect can carry.
type CallbackParams struct {
	IDToken   string
	AuthToken string
}

// ParseCallback extracts the idToken from the URL fragment (idToken or id_token)
// and an onboarding authToken from the query string.
func ParseCallback(rawURL string) (CallbackParams, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return CallbackParams{}, err
	}
	var p CallbackParams
	if frag := strings.TrimPrefix(u.Fragment, "#"); frag != "" {
		values, err := url.ParseQuery(frag)
		if err != nil {
			return CallbackParams{}, err
		}
		p.IDToken = firstNonEmpty(values.Get("idToken"), values.Get("id_token"))
	}
	p.AuthToken = strings.TrimSpace(u.Query().Get("authToken"))
	return p, nil
}

// HandleCallback completes the identity-provider redirect. The idToken is
// persisted, taken back out (deleted) and exchanged exactly once.
func (m *Manager) HandleCallback(ctx context.Context, rawURL string) (State, error) {
	params, err := ParseCallback(rawURL)
	if err != nil {
		return m.fail(ctx, err), err
	}
	if params.IDToken == "" && params.AuthToken != "" {
		return m.beginOnboarding(ctx, params.AuthToken)
	}
	if params.IDToken == "" {
		return m.fail(ctx, ErrMissingIDToken), ErrMissingIDToken
	}
	if err := m.store.SetIDToken(ctx, params.IDToken); err != nil {
		return m.fail(ctx, err), err
	}
	return m.exchangeStored(ctx)
}

func (m *Manager) exchangeStored(ctx context.Context) (State, error) {
	idToken, err := m.store.TakeIDToken(ctx)
	if err != nil {
		return m.fail(ctx, err), err
	}
	if idToken == "" {
		return m.fail(ctx, ErrMissingIDToken), ErrMissingIDToken
	}

	var grant grantResponse
	err = m.api.Do(ctx, http.MethodPost, "/api/auth/session", gateway.Options{
		Body:     exchangeRequest{IDToken: idToken},
		Auth:     gateway.AuthNone,
		Fallback: msgExchangeFailed,
	}, &grant)
	if err != nil {
		return m.fail(ctx, err), err
	}

	switch {
	case grant.AccessToken != "":
		return m.establish(ctx, grant)
	case grant.RequiresOnboarding && grant.AuthToken != "":
		return m.beginOnboarding(ctx, grant.AuthToken)
	default:
		return m.fail(ctx, ErrMalformedGrant), ErrMalformedGrant
	}
}

func (m *Manager) beginOnboarding(ctx context.Context, authToken string) (State, error) {
	if err := m.store.Clear(ctx, tokenstore.KeyAccessToken, tokenstore.KeyUser); err != nil {
		return m.fail(ctx, err), err
	}
	if err := m.store.SetAuthToken(ctx, authToken); err != nil {
		return m.fail(ctx, err), err
	}
	m.setState(StatePendingOnboarding)
	m.navigate(ctx, PathOnboarding)
	return StatePendingOnboarding, nil
}

func (m *Manager) establish(ctx context.Context, grant grantResponse) (State, error) {
	user := grant.summary()
	if user.ID == "" || user.Role == "" {
		user = m.fillFromClaims(user, grant.AccessToken)
	}
	if err := m.store.SetIdentity(ctx, grant.AccessToken, user); err != nil {
		return m.fail(ctx, err), err
	}
	if err := m.store.Clear(ctx, tokenstore.KeyAuthToken, tokenstore.KeySignupToken); err != nil {
		telemetry.Warn("session.onboarding_tokens_not_cleared", map[string]any{"error": err})
	}
	m.setState(StateAuthenticated)
	m.navigate(ctx, PathHome)
	return StateAuthenticated, nil
}

func (m *Manager) fillFromClaims(user tokenstore.UserSummary, access string) tokenstore.UserSummary {
	filled, err := m.userFromClaims(access)
	if err != nil {
		return user
	}
	if user.ID == "" {
		user.ID = filled.ID
	}
	if user.Role == "" {
		user.Role = filled.Role
	}
	if user.Nickname == "" {
		user.Nickname = filled.Nickname
	}
	return user
}

// fail records the error state, sends the front end to login and then settles
// on whatever the token store still supports (anonymous after a fresh login
// attempt; an onboarding handshake already in progress is left alone).
func (m *Manager) fail(ctx context.Context, cause error) State {
	telemetry.Warn("session.callback_failed", map[string]any{"error": cause})
	m.setState(StateError)
	m.navigate(ctx, PathLogin)
	if _, err := m.Current(ctx); err != nil {
		m.setState(StateAnonymous)
	}
	return StateError
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
