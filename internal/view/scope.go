// Package view holds the per-mount state helpers shared by every page-like
// command: liveness checks for late responses, double-submit guards and
// per-section error banners.
package view

import (
	"errors"
	"sync"
	"sync/atomic"

	"fitgap-client/internal/session"
)

// ErrBusy is returned when a mutating action is submitted while the previous
// submission of the same action is still pending.
var ErrBusy = errors.New("request already in progress")

// Generation reports a counter that moves on every session transition.
type Generation interface {
	Generation() uint64
}

// Scope is one mount of a view. State updates that follow a network call go
// through Apply so a response arriving after unmount, or after the session
// changed, is dropped.
type Scope struct {
	session Generation
	start   uint64

	mu      sync.Mutex
	mounted bool
}

// Mount starts a scope bound to the current session generation.
func Mount(session Generation) *Scope {
	return &Scope{session: session, start: session.Generation(), mounted: true}
}

// Rebase binds the scope to the current session generation. Views call it
// right after their mount guard passes, since the guard itself may settle the
// session state. An unmounted scope stays unmounted.
func (s *Scope) Rebase() {
	s.mu.Lock()
	s.start = s.session.Generation()
	s.mu.Unlock()
}

// Live reports whether updates may still be applied.
func (s *Scope) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked()
}

func (s *Scope) liveLocked() bool {
	return s.mounted && s.session.Generation() == s.start
}

// Apply runs fn only while the scope is live and reports whether it ran.
func (s *Scope) Apply(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.liveLocked() {
		return false
	}
	fn()
	return true
}

// Commit is Apply for the final update of a load. An update dropped because
// the session changed while the load was in flight, typically a 401 revoking
// it, is reported as session.ErrUnauthenticated. After Unmount it is a no-op.
func (s *Scope) Commit(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil
	}
	if s.session.Generation() != s.start {
		return session.ErrUnauthenticated
	}
	fn()
	return nil
}

// Unmount ends the scope; later Apply calls are no-ops.
func (s *Scope) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
}

// Pending guards one mutating action against double submission.
type Pending struct {
	busy atomic.Bool
}

// Run executes fn unless a previous Run is still in flight.
func (p *Pending) Run(fn func() error) error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer p.busy.Store(false)
	return fn()
}

// Busy reports whether a submission is in flight (the disabled state).
func (p *Pending) Busy() bool {
	return p.busy.Load()
}

// Banner is the inline error of one page section.
type Banner struct {
	mu  sync.Mutex
	msg string
}

func (b *Banner) Set(msg string) {
	b.mu.Lock()
	b.msg = msg
	b.mu.Unlock()
}

func (b *Banner) Clear() {
	b.Set("")
}

func (b *Banner) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}
