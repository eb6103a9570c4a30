package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
	"github.com/tokobaju/storefront/internal/pkg/metrics"
)

// AccessControl resolves session tokens and turns them into decisions. It
// never redirects or writes responses; that is the HTTP layer's job.
type AccessControl struct {
	sessions ports.SessionStore
	logger   zerolog.Logger
}

func NewAccessControl(sessions ports.SessionStore, logger zerolog.Logger) *AccessControl {
	return &AccessControl{sessions: sessions, logger: logger}
}

// ResolveSession returns the identity behind token, or nil for an anonymous
// caller. An error means the session store itself failed.
func (a *AccessControl) ResolveSession(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	id, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		a.logger.Error().Err(err).Msg("session resolve failed")
		return nil, err
	}
	return id, nil
}

// RequireAuthenticated allows any live session.
func (a *AccessControl) RequireAuthenticated(ctx context.Context, token string) (domain.Decision, *domain.Identity, error) {
	id, err := a.ResolveSession(ctx, token)
	if err != nil {
		return domain.Unauthenticated, nil, err
	}
	return a.record(domain.DecideAuthenticated(id)), id, nil
}

// RequireRole allows only sessions holding role.
func (a *AccessControl) RequireRole(ctx context.Context, token string, role domain.Role) (domain.Decision, *domain.Identity, error) {
	id, err := a.ResolveSession(ctx, token)
	if err != nil {
		return domain.Unauthenticated, nil, err
	}
	return a.record(domain.DecideRole(id, role)), id, nil
}

func (a *AccessControl) record(d domain.Decision) domain.Decision {
	metrics.AccessDecisionsTotal.WithLabelValues(d.String()).Inc()
	return d
}
