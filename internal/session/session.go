// Package session binds a browser session to its cart and auth state.
package session

import (
	"sync"
	"time"

	"clubstore/internal/authstate"
	"clubstore/internal/cart"
	"clubstore/internal/domain"
)

// Session is the per-visitor state. Cart and Auth are owned by the session
// and closed with it.
type Session struct {
	ID   string
	Cart *cart.Store
	Auth *authstate.Stream

	mu          sync.Mutex
	expiresAt   time.Time
	user        *domain.User
	accessToken string
	authVersion uint64
	saved       savedVersion
}

type savedVersion struct {
	cart    uint64
	auth    uint64
	expires int64
	ok      bool
}

func newSession(id string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Cart:      cart.NewStore(),
		Auth:      authstate.NewStream(),
		expiresAt: expiresAt,
	}
}

// ExpiresAt is when the session ends unless it is used again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// User returns the signed-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !now.Before(s.expiresAt)
}

// touch moves the expiry to now+ttl once at least step has elapsed since the
// last extension, so a busy session is not re-persisted on every request.
func (s *Session) touch(now time.Time, ttl, step time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next := now.Add(ttl); next.Sub(s.expiresAt) >= step {
		s.expiresAt = next
	}
}

func (s *Session) setUser(u *domain.User, token string) {
	s.mu.Lock()
	s.user = u
	s.accessToken = token
	s.authVersion++
	s.mu.Unlock()

	s.Auth.Publish(authstate.State{User: u})
}

// dirty reports whether the cart or auth binding changed since the last save
// and returns the versions to record once the save succeeds.
func (s *Session) dirty() (savedVersion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.versionLocked()
	return cur, cur != s.saved
}

func (s *Session) versionLocked() savedVersion {
	return savedVersion{cart: s.Cart.Version(), auth: s.authVersion, expires: s.expiresAt.UnixNano(), ok: true}
}

func (s *Session) markSaved(v savedVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = v
}
