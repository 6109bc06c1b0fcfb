// Package session tracks who is signed in and which surface they get.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
)

// Listener receives the current session, or nil once signed out.
type Listener func(*domain.Session)

// Gate owns the current session. Every transition between signed-in and
// signed-out is reported exactly once to each listener.
type Gate struct {
	provider domain.IdentityProvider
	now      func() time.Time

	mu        sync.Mutex
	current   *domain.Session
	listeners []Listener
}

// NewGate returns a signed-out gate over provider.
func NewGate(provider domain.IdentityProvider) *Gate {
	return &Gate{provider: provider, now: time.Now}
}

// OnChange registers fn for future transitions.
func (g *Gate) OnChange(fn Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// SignIn runs the identity provider's flow and, on success, replaces the
// current session.
func (g *Gate) SignIn(ctx context.Context) (*domain.Session, error) {
	s, err := g.provider.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if s == nil || s.Token == "" {
		return nil, fmt.Errorf("sign in: %w", domain.ErrNotSignedIn)
	}
	g.set(s)
	return s, nil
}

// SignOut drops the current session. It is a no-op when already signed out.
func (g *Gate) SignOut() {
	g.mu.Lock()
	signedIn := g.current != nil
	g.mu.Unlock()
	if !signedIn {
		return
	}
	g.provider.Revoke()
	g.set(nil)
}

// Current returns the live session, or nil. A session whose token has
// expired counts as a sign-out.
func (g *Gate) Current() *domain.Session {
	g.mu.Lock()
	s := g.current
	g.mu.Unlock()
	if s != nil && s.Expired(g.now()) {
		g.set(nil)
		return nil
	}
	return s
}

func (g *Gate) set(s *domain.Session) {
	g.mu.Lock()
	if g.current == nil && s == nil {
		g.mu.Unlock()
		return
	}
	g.current = s
	listeners := append([]Listener(nil), g.listeners...)
	g.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
