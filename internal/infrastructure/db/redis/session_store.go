package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokobaju/storefront/internal/core/domain"
)

// SessionStore implements ports.SessionStore on Redis.
//
// Key format:
//
//	session:<sha256(token)>      hash {user_id, role, expires_at(unix ms)}, PEXPIREAT expires_at
//	user_sessions:<user_id>      set of token hashes, for DestroyUser
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

// WithClock replaces time.Now, for tests.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

func (s *SessionStore) Issue(ctx context.Context, userID string, role domain.Role, ttl time.Duration) (*domain.Session, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: session ttl must be positive", domain.ErrValidation)
	}
	token, err := domain.NewSessionToken()
	if err != nil {
		return nil, err
	}
	hash := domain.HashSessionToken(token)
	expiresAt := s.now().Add(ttl)
	key, userKey := sessionKey(hash), userSessionsKey(userID)

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", userID,
			"role", string(role),
			"expires_at", expiresAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, expiresAt)
		pipe.SAdd(ctx, userKey, hash)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session issue: %w", err)
	}

	// The user index must outlive the longest session it points at.
	if remaining, err := s.client.PTTL(ctx, userKey).Result(); err == nil && remaining < ttl {
		_ = s.client.PExpireAt(ctx, userKey, expiresAt).Err()
	}

	return &domain.Session{Token: token, UserID: userID, Role: role, ExpiresAt: expiresAt}, nil
}

func (s *SessionStore) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	hash := domain.HashSessionToken(token)

	fields, err := s.client.HGetAll(ctx, sessionKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("session resolve: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	userID := fields["user_id"]
	role, roleErr := domain.ParseRole(fields["role"])
	expiresMs, tsErr := strconv.ParseInt(fields["expires_at"], 10, 64)
	if userID == "" || roleErr != nil || tsErr != nil || !s.now().Before(time.UnixMilli(expiresMs)) {
		// Expired (clock ahead of Redis) or corrupt: treat as missing and drop it.
		_ = s.remove(ctx, hash, userID)
		return nil, domain.ErrSessionNotFound
	}

	return &domain.Identity{UserID: userID, Role: role}, nil
}

func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	hash := domain.HashSessionToken(token)

	userID, err := s.client.HGet(ctx, sessionKey(hash), "user_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session destroy: %w", err)
	}
	return s.remove(ctx, hash, userID)
}

func (s *SessionStore) DestroyUser(ctx context.Context, userID string) error {
	userKey := userSessionsKey(userID)

	hashes, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("session destroy user: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, sessionKey(h))
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("session destroy user: %w", err)
	}
	return nil
}

func (s *SessionStore) remove(ctx context.Context, hash, userID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(hash))
		if userID != "" {
			pipe.SRem(ctx, userSessionsKey(userID), hash)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session remove: %w", err)
	}
	return nil
}

func sessionKey(hash string) string {
	return "session:" + hash
}

func userSessionsKey(userID string) string {
	return "user_sessions:" + userID
}
