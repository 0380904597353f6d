// Package postings is the company posting view. Creating a posting is
// followed by a best-effort analysis pairing; the posting stands whatever
// the pairing outcome.
package postings

import (
	"context"
	"errors"
	"sync"

	"fitgap-client/internal/analyses"
	"fitgap-client/internal/gateway"
	"fitgap-client/internal/mypage"
	"fitgap-client/internal/quota"
	"fitgap-client/internal/session"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/signals"
	"fitgap-client/internal/view"
)

// ResumeHandle reads the transient handle of a just-saved résumé.
type ResumeHandle interface {
	ResumeID(ctx context.Context) (string, error)
}

// Deps wires a Page.
type Deps struct {
	Guard    view.Guard
	MyPage   *mypage.Client
	Postings *Client
	Analyses *analyses.Client
	Handle   ResumeHandle
	Nav      session.Navigator
}

// Page holds one mount of the posting view.
type Page struct {
	deps  Deps
	scope *view.Scope

	postings *quota.Collection[mypage.Posting]

	mu      sync.RWMutex
	signals signals.Map

	Banner   view.Banner
	creating view.Pending
}

func NewPage(deps Deps) *Page {
	return &Page{
		deps:     deps,
		scope:    view.Mount(deps.Guard),
		postings: quota.NewCollection("posting", quota.PostingLimit, mypage.PostingID),
		signals:  signals.Map{},
	}
}

func (p *Page) guard(ctx context.Context) error {
	if _, err := p.deps.Guard.RequireRole(ctx, session.RoleCompany); err != nil {
		if errors.Is(err, session.ErrRoleForbidden) {
			p.Banner.Set(msgRoleForbidden)
		}
		return err
	}
	p.scope.Rebase()
	return nil
}

// Load fetches the account postings and fans out their signal lookups.
func (p *Page) Load(ctx context.Context) error {
	if err := p.guard(ctx); err != nil {
		return err
	}
	summary, err := p.deps.MyPage.Fetch(ctx, msgFetchFailed)
	if err != nil {
		p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgFetchFailed)) })
		return err
	}
	ids := make([]string, 0, len(summary.Postings))
	for _, posting := range summary.Postings {
		ids = append(ids, mypage.PostingID(posting))
	}
	merged := signals.Correlate(ctx, ids, p.deps.Analyses.ByPosting)
	return p.scope.Commit(func() {
		p.Banner.Clear()
		p.postings.Reset(summary.Postings)
		p.mu.Lock()
		p.signals = merged
		p.mu.Unlock()
	})
}

// CreateResult reports what happened after the posting was stored.
type CreateResult struct {
	Posting mypage.Posting
	Pairing analyses.PairOutcome
}

// Create registers a posting, blocked before any request once the account
// holds the maximum. On success it attempts an analysis pairing with the
// stored résumé handle and navigates to the new analysis when one is created.
func (p *Page) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	var res CreateResult
	err := p.creating.Run(func() error {
		if err := p.guard(ctx); err != nil {
			return err
		}
		if err := p.postings.CheckCreate(); err != nil {
			p.Banner.Set(err.Error())
			return err
		}
		p.Banner.Clear()
		posting, err := p.deps.Postings.Create(ctx, req)
		if err != nil {
			p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgCreateFailed)) })
			return err
		}
		res.Posting = posting
		p.scope.Apply(func() { p.postings.Prepend(posting) })

		pair := analyses.CreateRequest{PostingID: posting.ID.String()}
		if resumeID, err := p.deps.Handle.ResumeID(ctx); err == nil {
			pair.ResumeID = resumeID
		} else {
			telemetry.Warn("postings.resume_handle_failed", map[string]any{"error": err})
		}
		res.Pairing = p.deps.Analyses.Pair(ctx, pair)
		switch {
		case res.Pairing.Paired():
			if p.scope.Live() {
				p.deps.Nav.Navigate(ctx, "/analysis/"+res.Pairing.AnalysisID)
			}
		case res.Pairing.HasSignal:
			p.scope.Apply(func() {
				p.mu.Lock()
				p.signals.Record(pair.PostingID, string(res.Pairing.Signal))
				p.mu.Unlock()
			})
		}
		return nil
	})
	return res, err
}

// Postings returns the cached list, newest first.
func (p *Page) Postings() []mypage.Posting {
	return p.postings.Items()
}

// Remaining is the number of postings the account may still create.
func (p *Page) Remaining() int {
	return p.postings.Remaining()
}

// Signals returns a copy of the merged signal map.
func (p *Page) Signals() signals.Map {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(signals.Map, len(p.signals))
	for k, v := range p.signals {
		out[k] = v
	}
	return out
}

func (p *Page) Busy() bool {
	return p.creating.Busy()
}

func (p *Page) Unmount() {
	p.scope.Unmount()
}
