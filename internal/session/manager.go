package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"clubstore/internal/authstate"
	"clubstore/internal/cache"
	"clubstore/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidSession = errors.New("invalid session")

// UserResolver turns a stored access token back into a user.
type UserResolver interface {
	Me(ctx context.Context, token string) (*domain.User, error)
}

// Manager keeps live sessions in memory. When a snapshot cache is configured,
// sessions unknown to this process are restored from it.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store    cache.SessionCache
	users    UserResolver
	ttl      time.Duration
	logger   *log.Logger
	now      func() time.Time
	restores singleflight.Group
}

// NewManager builds a manager. store and users may be nil, which disables
// snapshot restore and user re-resolution respectively.
func NewManager(store cache.SessionCache, users UserResolver, ttl time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		users:    users,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Start creates a fresh signed-out session.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	s := newSession(token, m.now().Add(m.ttl))
	s.Auth.Publish(authstate.State{})

	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()

	if err := m.Persist(ctx, s); err != nil {
		m.logger.Printf("session: persist new session error=%v", err)
	}
	return s, nil
}

// Lookup returns the live session for token, restoring it from the snapshot
// cache on a miss. Expired sessions are ended and reported as invalid. A
// successful lookup slides the expiry forward by the manager TTL.
func (m *Manager) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if ok {
		now := m.now()
		if s.expired(now) {
			m.End(ctx, token)
			return nil, ErrInvalidSession
		}
		s.touch(now, m.ttl, m.refreshStep())
		return s, nil
	}
	if m.store == nil {
		return nil, ErrInvalidSession
	}

	v, err, _ := m.restores.Do(token, func() (interface{}, error) {
		return m.restore(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	s = v.(*Session)
	s.touch(m.now(), m.ttl, m.refreshStep())
	return s, nil
}

// refreshStep is how far the expiry must move before a lookup extends it.
func (m *Manager) refreshStep() time.Duration {
	return m.ttl / 10
}

func (m *Manager) restore(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	existing, ok := m.sessions[token]
	m.mu.RUnlock()
	if ok {
		return existing, nil
	}

	snap, err := m.store.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			m.logger.Printf("session: restore error=%v", err)
		}
		return nil, ErrInvalidSession
	}
	if !snap.ExpiresAt.IsZero() && !m.now().Before(snap.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return nil, ErrInvalidSession
	}

	expiresAt := snap.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = m.now().Add(m.ttl)
	}
	s := newSession(token, expiresAt)
	s.Cart.Restore(snap.Cart)

	var user *domain.User
	if snap.AccessToken != "" && m.users != nil {
		u, err := m.users.Me(ctx, snap.AccessToken)
		if err == nil {
			user = u
		} else {
			m.logger.Printf("session: drop stale auth session=%s error=%v", shortID(token), err)
		}
	}
	if user != nil {
		s.user = user
		s.accessToken = snap.AccessToken
	}
	s.Auth.Publish(authstate.State{User: user})
	if user != nil || snap.AccessToken == "" {
		s.markSaved(s.versionLocked())
	}

	m.mu.Lock()
	if existing, ok := m.sessions[token]; ok {
		m.mu.Unlock()
		s.Auth.Close()
		return existing, nil
	}
	m.sessions[token] = s
	m.mu.Unlock()

	m.logger.Printf("session: restored session=%s lines=%d signed_in=%t", shortID(token), s.Cart.Len(), user != nil)
	return s, nil
}

// Persist writes the session snapshot if anything changed since the last write.
func (m *Manager) Persist(ctx context.Context, s *Session) error {
	if m.store == nil {
		return nil
	}
	v, dirty := s.dirty()
	if !dirty {
		return nil
	}
	snap := &cache.SessionSnapshot{
		Cart:        s.Cart.Snapshot(),
		AccessToken: s.AccessToken(),
		ExpiresAt:   time.Unix(0, v.expires),
	}
	if u := s.User(); u != nil {
		snap.UserID = u.ID
	}
	if err := m.store.Set(ctx, s.ID, snap); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.markSaved(v)
	return nil
}

// BindUser marks the session as signed in and notifies auth subscribers.
func (m *Manager) BindUser(ctx context.Context, s *Session, u *domain.User, accessToken string) error {
	s.setUser(u, accessToken)
	return m.Persist(ctx, s)
}

// Unbind signs the session out. The cart is kept.
func (m *Manager) Unbind(ctx context.Context, s *Session) error {
	s.setUser(nil, "")
	return m.Persist(ctx, s)
}

// End forgets the session and closes its auth stream.
func (m *Manager) End(ctx context.Context, token string) {
	m.mu.Lock()
	s, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if ok {
		s.Auth.Close()
	}
	if m.store != nil {
		if err := m.store.Delete(ctx, token); err != nil {
			m.logger.Printf("session: delete snapshot error=%v", err)
		}
	}
}

// Sweep ends every expired in-memory session and returns how many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()
	var expired []string
	m.mu.RLock()
	for token, s := range m.sessions {
		if s.expired(now) {
			expired = append(expired, token)
		}
	}
	m.mu.RUnlock()

	for _, token := range expired {
		m.End(ctx, token)
	}
	if len(expired) > 0 {
		m.logger.Printf("session: swept count=%d", len(expired))
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// TTL is the idle lifetime of a session.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Active reports how many sessions are held in memory.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func shortID(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
