package ports

import (
	"context"

	"github.com/tokobaju/storefront/internal/core/domain"
)

// NewUser is a registration candidate. Role is honored only when
// ProvisionedBy is an admin identity; every other path gets domain.RoleUser.
type NewUser struct {
	Username      string
	Email         string
	Password      string
	Role          domain.Role
	ProvisionedBy *domain.Identity
}

// UserDirectory looks up and creates accounts.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, candidate NewUser) (*domain.User, error)
}

// PasswordHasher is a slow salted one-way hash. Verify never fails loudly:
// any malformed digest simply does not match.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
	// DummyDigest is verified against when an account does not exist, so
	// that path costs the same as a wrong password.
	DummyDigest() string
}
