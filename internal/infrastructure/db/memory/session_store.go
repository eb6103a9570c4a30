// Package memory provides a process-local session store for single-instance
// deployments and development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tokobaju/storefront/internal/core/domain"
)

const defaultSweepInterval = time.Minute

type entry struct {
	userID    string
	role      domain.Role
	expiresAt time.Time
}

// SessionStore implements ports.SessionStore in memory. Entries are keyed by
// the token hash. Expired entries are dropped on access and by a periodic
// sweep started with Start.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	byUser   map[string]map[string]struct{}

	now      func() time.Time
	interval time.Duration
	log      zerolog.Logger

	stop      chan struct{}
	done      chan struct{}
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

// WithSweepInterval sets how often expired sessions are purged.
func WithSweepInterval(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewSessionStore creates an empty store.
func NewSessionStore(log zerolog.Logger, opts ...Option) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]entry),
		byUser:   make(map[string]map[string]struct{}),
		now:      time.Now,
		interval: defaultSweepInterval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background sweeper. It exits when ctx is cancelled or
// Close is called.
func (s *SessionStore) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.sweepLoop(ctx)
	})
}

func (s *SessionStore) sweepLoop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug().Int("removed", n).Msg("expired sessions swept")
			}
		}
	}
}

// Close stops the sweeper started by Start and waits for it to exit.
func (s *SessionStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
	return nil
}

func (s *SessionStore) Issue(_ context.Context, userID string, role domain.Role, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: session ttl must be positive", domain.ErrValidation)
	}
	token, err := domain.NewSessionToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(ttl)
	key := domain.HashSessionToken(token)

	s.mu.Lock()
	s.sessions[key] = entry{userID: userID, role: role, expiresAt: expiresAt}
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][key] = struct{}{}
	s.mu.Unlock()

	return &domain.Session{Token: token, UserID: userID, Role: role, ExpiresAt: expiresAt}, nil
}

func (s *SessionStore) Resolve(_ context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	key := domain.HashSessionToken(token)

	s.mu.RLock()
	e, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check: another goroutine may have replaced or removed it.
		if cur, still := s.sessions[key]; still && !s.now().Before(cur.expiresAt) {
			s.removeLocked(key, cur.userID)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	return &domain.Identity{UserID: e.userID, Role: e.role}, nil
}

func (s *SessionStore) Destroy(_ context.Context, token string) error {
	key := domain.HashSessionToken(token)

	s.mu.Lock()
	if e, ok := s.sessions[key]; ok {
		s.removeLocked(key, e.userID)
	}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) DestroyUser(_ context.Context, userID string) error {
	s.mu.Lock()
	for key := range s.byUser[userID] {
		delete(s.sessions, key)
	}
	delete(s.byUser, userID)
	s.mu.Unlock()
	return nil
}

// Sweep removes every expired session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	removed := 0

	s.mu.Lock()
	for key, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			s.removeLocked(key, e.userID)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

// Len returns the number of stored (possibly expired) sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) removeLocked(key, userID string) {
	delete(s.sessions, key)
	if keys := s.byUser[userID]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.byUser, userID)
		}
	}
}
