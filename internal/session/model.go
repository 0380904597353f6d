package session

import (
	"context"
	"errors"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/tokenstore"
)

// State is one phase of the identity lifecycle.
type State string

const (
	StateAnonymous         State = "anonymous"
	StatePendingOnboarding State = "pending_onboarding"
	StateAuthenticated     State = "authenticated"
	StateError             State = "error"
)

// Role is fixed at onboarding and decides which resources an account may own.
type Role string

const (
	RoleJobseeker Role = "JOBSEEKER"
	RoleCompany   Role = "COMPANY"
)

// Navigation targets.
const (
	PathHome       = "/"
	PathLogin      = "/login"
	PathOnboarding = "/onboarding"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrRoleForbidden   = errors.New("role not permitted")
	ErrMissingIDToken  = errors.New("idToken missing from callback")
	ErrNoAuthToken     = errors.New("authToken이 없습니다. 다시 로그인 해주세요.")
	ErrMalformedGrant  = errors.New("session exchange returned neither access_token nor auth_token")
)

// Localized fallbacks for session endpoints.
const (
	msgExchangeFailed   = "세션 동기화 실패"
	msgOnboardingFailed = "온보딩 실패"
)

// Transition is delivered to subscribers on every state change.
type Transition struct {
	From State
	To   State
}

// Snapshot is what views consume: the state and, when authenticated, the user.
type Snapshot struct {
	State State
	User  tokenstore.UserSummary
}

// Navigator moves the front end to another view.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// API is the subset of the gateway used by the session manager.
type API interface {
	Do(ctx context.Context, method, path string, opts gateway.Options, out any) error
}

// RoleError carries the required role of a rejected action.
type RoleError struct {
	Required Role
	Actual   Role
}

func (e *RoleError) Error() string {
	return "requires " + string(e.Required) + " role, have " + string(e.Actual)
}

func (e *RoleError) Unwrap() error {
	return ErrRoleForbidden
}
