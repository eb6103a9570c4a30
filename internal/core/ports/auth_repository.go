package ports

import (
	"context"

	"github.com/tokobaju/storefront/internal/core/domain"
)

// UserRepository persists accounts. Insert must enforce username and email
// uniqueness at the storage layer and report a violation as
// domain.ErrDuplicateKey.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
}

// AuthEventRepository stores the authentication audit trail.
type AuthEventRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}
