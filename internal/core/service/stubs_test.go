package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

// stubUserRepo mirrors the unique username/email indexes of the real store.
type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	findErr error // if set, every Find returns this error
	inserts int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrDuplicateKey
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[created.ID] = created
	r.inserts++
	return cloneUser(created), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) remove(id string) {
	r.mu.Lock()
	delete(r.users, id)
	r.mu.Unlock()
}

type stubAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
}

func (r *stubAuditRepo) InsertAuthEvent(_ context.Context, e *domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *stubAuditRepo) types() []domain.AuthEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// countingHasher wraps a real hasher and counts Hash and Verify calls.
type countingHasher struct {
	inner      ports.PasswordHasher
	mu         sync.Mutex
	hashes     int
	verifies   int
	lastDigest string
}

func (h *countingHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.inner.Hash(ctx, plaintext)
}

func (h *countingHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	h.mu.Lock()
	h.verifies++
	h.lastDigest = digest
	h.mu.Unlock()
	return h.inner.Verify(ctx, plaintext, digest)
}

func (h *countingHasher) DummyDigest() string { return h.inner.DummyDigest() }

func (h *countingHasher) hashCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}

func (h *countingHasher) lastVerified() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastDigest
}

func (h *countingHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

// failingSessionStore simulates an unreachable session backend.
type failingSessionStore struct{ err error }

func (s failingSessionStore) Issue(context.Context, string, domain.Role, time.Duration) (*domain.Session, error) {
	return nil, s.err
}

func (s failingSessionStore) Resolve(context.Context, string) (*domain.Identity, error) {
	return nil, s.err
}

func (s failingSessionStore) Destroy(context.Context, string) error { return s.err }

func (s failingSessionStore) DestroyUser(context.Context, string) error { return s.err }

// brokenDestroyStore resolves sessions normally but cannot delete them.
type brokenDestroyStore struct {
	ports.SessionStore
	err      error
	destroys int
}

func (s *brokenDestroyStore) Destroy(context.Context, string) error {
	s.destroys++
	return s.err
}
