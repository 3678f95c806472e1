package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash keeps unknown-user logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("traffic-atlas"), bcrypt.MinCost)

type Option func(*Manager)

func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) {
		m.maxAge = d
	}
}

func WithDefaultPageSize(size int) Option {
	return func(m *Manager) {
		m.pageSize = size
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager owns every live session and the credentials they log in against.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	users    map[string][]byte
	maxAge   time.Duration
	pageSize int
	now      func() time.Time
}

// NewManager takes username to bcrypt hash pairs.
func NewManager(users map[string]string, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		users:    make(map[string][]byte, len(users)),
		pageSize: report.DefaultPageSize,
		now:      time.Now,
	}
	for name, hash := range users {
		m.users[name] = []byte(hash)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new anonymous session.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		pages:    report.NewPageStates(m.pageSize),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// Get returns a live session and refreshes its idle timer. Expired sessions
// are dropped.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	now := m.now()
	if s.expired(now, m.maxAge) {
		delete(m.sessions, id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Login authenticates the caller of s and returns the session that replaces
// it. The replacement carries a fresh ID; s is dropped from the manager so an
// ID handed out before login can never act as the logged-in user. Pagination
// state from the anonymous phase is discarded.
func (m *Manager) Login(ctx context.Context, s *Session, username, password string) (*Session, error) {
	hash, ok := m.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		zerolog.Ctx(ctx).Warn().Str("user", username).Msg("login for unknown user")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		zerolog.Ctx(ctx).Warn().Str("user", username).Msg("login with wrong password")
		return nil, ErrInvalidCredentials
	}

	rotated := &Session{
		ID:       uuid.NewString(),
		state:    Authenticated,
		user:     username,
		pages:    report.NewPageStates(m.pageSize),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.sessions[rotated.ID] = rotated
	m.mu.Unlock()

	zerolog.Ctx(ctx).Info().Str("user", username).Str("session", rotated.ID).Msg("logged in")
	return rotated, nil
}

// Logout returns s to Anonymous. The session itself stays valid.
func (m *Manager) Logout(ctx context.Context, s *Session) {
	user := s.User()
	s.transition(Anonymous, "", report.NewPageStates(m.pageSize))
	zerolog.Ctx(ctx).Info().Str("user", user).Str("session", s.ID).Msg("logged out")
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.expired(now, m.maxAge) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
