package ports

import (
	"context"
	"time"

	"github.com/tokobaju/storefront/internal/core/domain"
)

// SessionStore maps opaque tokens to identities until they expire.
type SessionStore interface {
	Issue(ctx context.Context, userID string, role domain.Role, ttl time.Duration) (*domain.Session, error)
	// Resolve returns domain.ErrSessionNotFound for unknown, destroyed and
	// expired tokens alike.
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
	// Destroy is idempotent.
	Destroy(ctx context.Context, token string) error
	// DestroyUser revokes every session held by userID.
	DestroyUser(ctx context.Context, userID string) error
}
