package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

// UserDirectory implements ports.UserDirectory on top of a UserRepository.
type UserDirectory struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserDirectory(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserDirectory {
	return &UserDirectory{repo: repo, hasher: hasher, logger: logger, now: time.Now}
}

func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.repo.FindByUsername(ctx, strings.TrimSpace(username))
}

func (d *UserDirectory) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return d.repo.FindByID(ctx, id)
}

// Create hashes the candidate's password and persists the account. The role
// is forced to domain.RoleUser unless the candidate was provisioned by an
// admin. Duplicate usernames or emails surface as domain.ErrDuplicateKey from
// the repository's unique indexes; there is no separate existence check.
func (d *UserDirectory) Create(ctx context.Context, candidate ports.NewUser) (*domain.User, error) {
	username := strings.TrimSpace(candidate.Username)
	email := domain.NormalizeEmail(candidate.Email)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if candidate.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	role := domain.RoleUser
	if candidate.ProvisionedBy != nil && candidate.ProvisionedBy.Role == domain.RoleAdmin {
		if !candidate.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, candidate.Role)
		}
		role = candidate.Role
	}

	hash, err := d.hasher.Hash(ctx, candidate.Password)
	if err != nil {
		return nil, err
	}

	now := d.now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := d.repo.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	d.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}
