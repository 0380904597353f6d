package view

import (
	"context"

	"fitgap-client/internal/session"
	"fitgap-client/internal/tokenstore"
)

// Guard is the part of the session manager a view depends on.
type Guard interface {
	Generation
	RequireAuthenticated(ctx context.Context) (tokenstore.UserSummary, error)
	RequireRole(ctx context.Context, role session.Role) (tokenstore.UserSummary, error)
}
