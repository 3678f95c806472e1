package session

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/services/report"
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is one browser or terminal user. Pagination positions live here so
// two users paging the same table never move each other.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	user     string
	pages    *report.PageStates
	lastSeen time.Time
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Pages() *report.PageStates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maxAge > 0 && now.Sub(s.lastSeen) > maxAge
}

func (s *Session) transition(state State, user string, pages *report.PageStates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
	s.pages = pages
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
