// Package resumes is the jobseeker résumé view: save, replace, delete and
// request an analysis of the single résumé an account may own.
package resumes

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitgap-client/internal/analyses"
	"fitgap-client/internal/gateway"
	"fitgap-client/internal/mypage"
	"fitgap-client/internal/quota"
	"fitgap-client/internal/session"
	"fitgap-client/internal/signals"
	"fitgap-client/internal/view"
)

// ErrNoResume is returned by actions that need a saved résumé.
var ErrNoResume = errors.New(msgNoResume)

// Handles persists the transient résumé id that links a fresh résumé to the
// next analysis request.
type Handles interface {
	ResumeID(ctx context.Context) (string, error)
	SetResumeID(ctx context.Context, id string) error
	ClearResumeID(ctx context.Context) error
}

// Deps wires a Page.
type Deps struct {
	Guard    view.Guard
	MyPage   *mypage.Client
	Resumes  *Client
	Analyses *analyses.Client
	Handles  Handles
	Nav      session.Navigator
}

// Page holds one mount of the résumé view.
type Page struct {
	deps  Deps
	scope *view.Scope

	resumes *quota.Collection[mypage.Resume]

	mu     sync.RWMutex
	signal signals.Signal

	Banner  view.Banner
	saving  view.Pending
	analyze view.Pending
}

func NewPage(deps Deps) *Page {
	return &Page{
		deps:    deps,
		scope:   view.Mount(deps.Guard),
		resumes: quota.NewCollection("resume", quota.ResumeLimit, mypage.ResumeID),
	}
}

func (p *Page) guard(ctx context.Context) error {
	_, err := p.deps.Guard.RequireRole(ctx, session.RoleJobseeker)
	if err != nil {
		if errors.Is(err, session.ErrRoleForbidden) {
			p.Banner.Set(msgRoleForbidden)
		}
		return err
	}
	p.scope.Rebase()
	return nil
}

// Load fetches the résumé list and its latest signal.
func (p *Page) Load(ctx context.Context) error {
	if err := p.guard(ctx); err != nil {
		return err
	}
	summary, err := p.deps.MyPage.Fetch(ctx, msgFetchFailed)
	if err != nil {
		p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgFetchFailed)) })
		return err
	}
	var sig signals.Signal
	if len(summary.Resumes) > 0 {
		sig, _ = signals.One(ctx, mypage.ResumeID(summary.Resumes[0]), p.deps.Analyses.ByResume)
	}
	return p.scope.Commit(func() {
		p.Banner.Clear()
		p.resumes.Reset(summary.Resumes)
		p.mu.Lock()
		p.signal = sig
		p.mu.Unlock()
	})
}

// Create saves a new résumé. It is blocked before any request once the
// account already has one.
func (p *Page) Create(ctx context.Context, rawText string) (string, error) {
	var id string
	err := p.saving.Run(func() error {
		if err := p.guard(ctx); err != nil {
			return err
		}
		if err := p.resumes.CheckCreate(); err != nil {
			p.Banner.Set(err.Error())
			return err
		}
		var err error
		id, err = p.save(ctx, rawText, false)
		return err
	})
	return id, err
}

// Replace overwrites the existing résumé text.
func (p *Page) Replace(ctx context.Context, rawText string) (string, error) {
	var id string
	err := p.saving.Run(func() error {
		if err := p.guard(ctx); err != nil {
			return err
		}
		if p.resumes.Len() == 0 {
			p.Banner.Set(msgNoResume)
			return ErrNoResume
		}
		var err error
		id, err = p.save(ctx, rawText, true)
		return err
	})
	return id, err
}

func (p *Page) save(ctx context.Context, rawText string, replace bool) (string, error) {
	p.Banner.Clear()
	id, err := p.deps.Resumes.Save(ctx, rawText)
	if err != nil {
		p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgSaveFailed)) })
		return "", err
	}
	if id != "" {
		if err := p.deps.Handles.SetResumeID(ctx, id); err != nil {
			return id, err
		}
	}
	p.scope.Apply(func() {
		saved := mypage.Resume{ID: gateway.ID(id), RawText: rawText, CreatedAt: time.Now().UTC().Format(time.RFC3339)}
		if replace {
			p.resumes.Reset([]mypage.Resume{saved})
		} else {
			p.resumes.Prepend(saved)
		}
		p.mu.Lock()
		p.signal = ""
		p.mu.Unlock()
	})
	return id, nil
}

// Delete removes the current résumé.
func (p *Page) Delete(ctx context.Context) error {
	return p.saving.Run(func() error {
		if err := p.guard(ctx); err != nil {
			return err
		}
		id := p.currentID(ctx)
		if id == "" {
			p.Banner.Set(msgNoResume)
			return ErrNoResume
		}
		p.Banner.Clear()
		if err := p.deps.Resumes.Delete(ctx, id); err != nil {
			p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgDeleteFailed)) })
			return err
		}
		if stored, _ := p.deps.Handles.ResumeID(ctx); stored == id {
			if err := p.deps.Handles.ClearResumeID(ctx); err != nil {
				return err
			}
		}
		p.scope.Apply(func() {
			p.resumes.Remove(id)
			p.mu.Lock()
			p.signal = ""
			p.mu.Unlock()
		})
		return nil
	})
}

// Analyze pairs the current résumé and navigates to the result.
func (p *Page) Analyze(ctx context.Context) (string, error) {
	var analysisID string
	err := p.analyze.Run(func() error {
		if err := p.guard(ctx); err != nil {
			return err
		}
		id := p.currentID(ctx)
		if id == "" {
			p.Banner.Set(msgNoResume)
			return ErrNoResume
		}
		p.Banner.Clear()
		res, err := p.deps.Analyses.Create(ctx, analyses.CreateRequest{ResumeID: id})
		if err != nil {
			p.scope.Apply(func() { p.Banner.Set(gateway.Message(err, msgAnalyzeFailed)) })
			return err
		}
		analysisID = res.AnalysisID.String()
		if analysisID != "" && p.scope.Live() {
			p.deps.Nav.Navigate(ctx, "/analysis/"+analysisID)
		}
		return nil
	})
	return analysisID, err
}

// currentID prefers the handle of a just-saved résumé over the fetched list.
func (p *Page) currentID(ctx context.Context) string {
	if id, err := p.deps.Handles.ResumeID(ctx); err == nil && id != "" {
		return id
	}
	if ids := p.resumes.IDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// Resumes returns the cached list, newest first.
func (p *Page) Resumes() []mypage.Resume {
	return p.resumes.Items()
}

// Remaining is the number of résumés the account may still create.
func (p *Page) Remaining() int {
	return p.resumes.Remaining()
}

// Signal is the latest signal of the current résumé, if any.
func (p *Page) Signal() (signals.Signal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.signal, p.signal != ""
}

// Busy reports whether any mutation is in flight.
func (p *Page) Busy() bool {
	return p.saving.Busy() || p.analyze.Busy()
}

func (p *Page) Unmount() {
	p.scope.Unmount()
}
