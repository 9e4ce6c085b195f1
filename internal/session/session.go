// Package session owns the signed-in identity: it restores it from the local
// store at startup, persists it on sign-in, clears it on sign-out and tells
// subscribers whenever it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emilianohg/sitecrew/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.0 -source=session.go -destination=mocks/store.go -package=mocks

var ErrInvalidRole = errors.New("identity has no known role")

type Store interface {
	Load(ctx context.Context) (*models.StoredSession, error)
	Save(ctx context.Context, s models.StoredSession) error
	Clear(ctx context.Context) error
}

// Listener receives the new identity, or nil after sign-out.
type Listener func(identity *models.Identity)

type Manager struct {
	store Store
	now   func() time.Time

	mu        sync.RWMutex
	current   *models.StoredSession
	listeners map[int]Listener
	nextID    int
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:     store,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// WithClock replaces the clock used for token expiry.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Restore reads the persisted session. Malformed or expired state is
// cleared from the store and leaves the manager unauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	stored, err := m.store.Load(ctx)
	if err != nil {
		m.set(nil)
		return fmt.Errorf("load session: %w", err)
	}

	if stored == nil {
		m.set(nil)
		return nil
	}

	role, ok := models.ParseRole(string(stored.Identity.Role))
	switch {
	case !ok:
		slog.WarnContext(ctx, "discarding stored session", "reason", "unknown role", "role", stored.Identity.Role)
	case m.expired(stored.Token):
		slog.InfoContext(ctx, "discarding stored session", "reason", "token expired")
		ok = false
	}

	if !ok {
		m.set(nil)
		if err := m.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}

	stored.Identity.Role = role
	m.set(stored)
	return nil
}

// Current returns the signed-in identity.
func (m *Manager) Current() (models.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return models.Identity{}, false
	}
	return m.current.Identity, true
}

// Credentials returns the bearer token and backend session cookie, both
// empty when signed out.
func (m *Manager) Credentials() (token, cookie string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return "", ""
	}
	return m.current.Token, m.current.Cookie
}

func (m *Manager) SignIn(ctx context.Context, identity models.Identity, token, cookie string) error {
	role, ok := models.ParseRole(string(identity.Role))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRole, identity.Role)
	}
	identity.Role = role

	stored := models.StoredSession{Identity: identity, Token: token, Cookie: cookie}
	if err := m.store.Save(ctx, stored); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.set(&stored)
	return nil
}

// SignOut clears the session. Signing out twice is the same as once.
func (m *Manager) SignOut(ctx context.Context) error {
	m.set(nil)
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Subscribe registers fn for identity changes and returns its unsubscribe.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) set(next *models.StoredSession) {
	m.mu.Lock()
	changed := !sameIdentity(m.current, next)
	m.current = next

	var notify []Listener
	if changed {
		notify = make([]Listener, 0, len(m.listeners))
		for _, fn := range m.listeners {
			notify = append(notify, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range notify {
		if next == nil {
			fn(nil)
			continue
		}
		identity := next.Identity
		fn(&identity)
	}
}

// expired reports whether token is a JWT whose exp has passed. Opaque
// tokens never expire on the client.
func (m *Manager) expired(token string) bool {
	if token == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(m.now())
}

func sameIdentity(a, b *models.StoredSession) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Identity == b.Identity
}
