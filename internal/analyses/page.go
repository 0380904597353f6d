package analyses

import (
	"context"
	"sync"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/view"
)

// DetailPage shows one analysis session.
type DetailPage struct {
	guard  view.Guard
	client *Client
	scope  *view.Scope

	mu      sync.RWMutex
	loaded  bool
	session Session

	Banner view.Banner
}

func NewDetailPage(guard view.Guard, client *Client) *DetailPage {
	return &DetailPage{guard: guard, client: client, scope: view.Mount(guard)}
}

// Load runs the mount guard and fetches the analysis.
func (p *DetailPage) Load(ctx context.Context, id string) error {
	if _, err := p.guard.RequireAuthenticated(ctx); err != nil {
		return err
	}
	p.scope.Rebase()
	s, err := p.client.Get(ctx, id)
	p.scope.Apply(func() {
		if err != nil {
			p.Banner.Set(gateway.Message(err, msgGetFailed))
			return
		}
		p.Banner.Clear()
		p.mu.Lock()
		p.session, p.loaded = s, true
		p.mu.Unlock()
	})
	return err
}

// Session returns the loaded analysis.
func (p *DetailPage) Session() (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session, p.loaded
}

func (p *DetailPage) Unmount() {
	p.scope.Unmount()
}
