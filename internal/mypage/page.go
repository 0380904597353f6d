package mypage

import (
	"context"
	"strings"
	"sync"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/session"
	"fitgap-client/internal/signals"
	"fitgap-client/internal/tokenstore"
	"fitgap-client/internal/view"
)

// Guard adds user-summary rewrites to the view guard.
type Guard interface {
	view.Guard
	UpdateUser(ctx context.Context, fn func(*tokenstore.UserSummary)) error
}

// SignalSource resolves latest signals per subject.
type SignalSource interface {
	ByPosting(ctx context.Context, postingID string) (string, bool, error)
	ByResume(ctx context.Context, resumeID string) (string, bool, error)
}

// Page is the account overview: profile, nickname, résumé and posting signals.
type Page struct {
	guard   Guard
	client  *Client
	signals SignalSource
	scope   *view.Scope

	mu             sync.RWMutex
	summary        Summary
	postingSignals signals.Map
	resumeSignal   signals.Signal

	Banner view.Banner
	saving view.Pending
}

func NewPage(guard Guard, client *Client, source SignalSource) *Page {
	return &Page{
		guard:          guard,
		client:         client,
		signals:        source,
		scope:          view.Mount(guard),
		postingSignals: signals.Map{},
	}
}

// Snapshot is the rendered state of the page.
type Snapshot struct {
	Summary        Summary
	PostingSignals signals.Map
	ResumeSignal   signals.Signal
}

// Load guards the mount, fetches the summary and enriches it with signals.
// Signal failures never reach the banner.
func (p *Page) Load(ctx context.Context) error {
	if _, err := p.guard.RequireAuthenticated(ctx); err != nil {
		return err
	}
	p.scope.Rebase()
	summary, err := p.client.Fetch(ctx, MsgFetchFailed)
	if err != nil {
		p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, MsgFetchFailed)) })
		return err
	}

	var postingSignals signals.Map
	if strings.EqualFold(summary.User.Role, string(session.RoleCompany)) && len(summary.Postings) > 0 {
		ids := make([]string, 0, len(summary.Postings))
		for _, posting := range summary.Postings {
			ids = append(ids, PostingID(posting))
		}
		postingSignals = signals.Correlate(ctx, ids, p.signals.ByPosting)
	}
	var resumeSignal signals.Signal
	if len(summary.Resumes) > 0 {
		resumeSignal, _ = signals.One(ctx, ResumeID(summary.Resumes[0]), p.signals.ByResume)
	}

	return p.scope.Commit(func() {
		p.Banner.Clear()
		p.mu.Lock()
		p.summary = summary
		if postingSignals == nil {
			postingSignals = signals.Map{}
		}
		p.postingSignals = postingSignals
		p.resumeSignal = resumeSignal
		p.mu.Unlock()
	})
}

// SaveNickname updates the nickname and mirrors it into the stored user summary.
func (p *Page) SaveNickname(ctx context.Context, nickname string) error {
	return p.saving.Run(func() error {
		if _, err := p.guard.RequireAuthenticated(ctx); err != nil {
			return err
		}
		p.scope.Rebase()
		p.Banner.Clear()
		updated, err := p.client.UpdateNickname(ctx, nickname)
		if err != nil {
			p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgNicknameFailed)) })
			return err
		}
		if err := p.guard.UpdateUser(ctx, func(u *tokenstore.UserSummary) { u.Nickname = updated }); err != nil {
			return err
		}
		p.scope.Apply(func() {
			p.mu.Lock()
			p.summary.User.Nickname = updated
			p.mu.Unlock()
		})
		return nil
	})
}

// Saving reports whether a mutation is in flight.
func (p *Page) Saving() bool {
	return p.saving.Busy()
}

func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sig := make(signals.Map, len(p.postingSignals))
	for k, v := range p.postingSignals {
		sig[k] = v
	}
	return Snapshot{Summary: p.summary, PostingSignals: sig, ResumeSignal: p.resumeSignal}
}

func (p *Page) Unmount() {
	p.scope.Unmount()
}
