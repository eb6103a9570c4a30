package ports

import (
	"context"

	"github.com/tokobaju/storefront/internal/core/domain"
)

// RegisterInput carries a self-registration request. Role is whatever the
// client sent and is never trusted.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// ProvisionInput carries an admin-initiated account creation.
type ProvisionInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	Provision(ctx context.Context, actor domain.Identity, in ProvisionInput) (*domain.User, error)
}

// AccessControl turns a session token into an access decision.
type AccessControl interface {
	ResolveSession(ctx context.Context, token string) (*domain.Identity, error)
	RequireAuthenticated(ctx context.Context, token string) (domain.Decision, *domain.Identity, error)
	RequireRole(ctx context.Context, token string, role domain.Role) (domain.Decision, *domain.Identity, error)
}
