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
	"github.com/tokobaju/storefront/internal/pkg/metrics"
)

const (
	defaultSessionTTL = 24 * time.Hour
	maxPasswordBytes  = 72
)

// bootstrapIdentity provisions the first admin from configuration at startup.
// It is never attached to a session.
var bootstrapIdentity = domain.Identity{UserID: "bootstrap", Role: domain.RoleAdmin}

// AuthService implements registration, login and logout.
type AuthService struct {
	directory  ports.UserDirectory
	sessions   ports.SessionStore
	hasher     ports.PasswordHasher
	audit      ports.AuthEventRepository
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService wires the service. audit may be nil.
func NewAuthService(
	directory ports.UserDirectory,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	audit ports.AuthEventRepository,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AuthService{
		directory:  directory,
		sessions:   sessions,
		hasher:     hasher,
		audit:      audit,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register creates a plain user account. Any client-supplied role is ignored.
// Registration does not start a session.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := validateCredentials(in.Username, in.Email, in.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if in.Role != "" && in.Role != string(domain.RoleUser) {
		s.logger.Warn().Str("requested_role", in.Role).Msg("ignoring client-supplied role on registration")
	}

	user, err := s.directory.Create(ctx, ports.NewUser{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		err = s.normalizeCreateError(err)
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.record(ctx, domain.EventRegistered, user.ID, user.Email)
	return user, nil
}

// Login authenticates by email and password and issues a session. An unknown
// email and a wrong password produce the same domain.ErrInvalidCredentials,
// and both run one bcrypt verification.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, s.loginFailed(ctx, "", email)
	}

	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return nil, nil, fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(ctx, password, s.hasher.DummyDigest())
		return nil, nil, s.loginFailed(ctx, "", email)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		return nil, nil, s.loginFailed(ctx, user.ID, email)
	}

	if !user.Role.Valid() {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("login: account %s has unknown role %q", user.ID, user.Role)
	}

	session, err := s.sessions.Issue(ctx, user.ID, user.Role, s.sessionTTL)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.record(ctx, domain.EventLoginSucceeded, user.ID, email)
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")
	return session, user, nil
}

// Logout destroys the session behind token. It always succeeds; store
// failures are logged.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	id, _ := s.sessions.Resolve(ctx, token)
	if err := s.sessions.Destroy(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("session destroy failed")
	}

	metrics.LogoutsTotal.WithLabelValues("session").Inc()
	if id != nil {
		s.record(ctx, domain.EventLoggedOut, id.UserID, "")
	}
	return nil
}

// LogoutAll revokes every session of userID.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.DestroyUser(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	metrics.LogoutsTotal.WithLabelValues("all").Inc()
	s.record(ctx, domain.EventLoggedOutAll, userID, "")
	return nil
}

// CurrentUser returns the account behind token, or domain.ErrSessionNotFound
// for anonymous callers.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	id, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.directory.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The account is gone; the session must not outlive it.
			if derr := s.sessions.Destroy(ctx, token); derr != nil {
				s.logger.Warn().Err(derr).Str("user_id", id.UserID).Msg("orphaned session destroy failed")
			}
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// Provision creates an account with an explicit role on behalf of an admin.
func (s *AuthService) Provision(ctx context.Context, actor domain.Identity, in ports.ProvisionInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.provision(ctx, actor, in)
}

// BootstrapAdmin makes sure the configured initial admin exists. It does
// nothing when an account with that email is already registered.
func (s *AuthService) BootstrapAdmin(ctx context.Context, in ports.ProvisionInput) (*domain.User, error) {
	existing, err := s.directory.FindByEmail(ctx, in.Email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn().Str("user_id", existing.ID).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	in.Role = domain.RoleAdmin
	user, err := s.provision(ctx, bootstrapIdentity, in)
	if errors.Is(err, domain.ErrDuplicateCredential) {
		// Another instance won the race.
		return s.directory.FindByEmail(ctx, in.Email)
	}
	return user, err
}

func (s *AuthService) provision(ctx context.Context, actor domain.Identity, in ports.ProvisionInput) (*domain.User, error) {
	if err := validateCredentials(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, in.Role)
	}

	user, err := s.directory.Create(ctx, ports.NewUser{
		Username:      in.Username,
		Email:         in.Email,
		Password:      in.Password,
		Role:          in.Role,
		ProvisionedBy: &actor,
	})
	if err != nil {
		return nil, s.normalizeCreateError(err)
	}

	s.record(ctx, domain.EventProvisioned, user.ID, user.Email)
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("by", actor.UserID).Msg("user provisioned")
	return user, nil
}

// normalizeCreateError keeps storage errors from crossing the service
// boundary unmapped.
func (s *AuthService) normalizeCreateError(err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		return domain.ErrDuplicateCredential
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrHashing):
		return err
	default:
		s.logger.Error().Err(err).Msg("user creation failed")
		return fmt.Errorf("create account: %w", err)
	}
}

func (s *AuthService) loginFailed(ctx context.Context, userID, email string) error {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	s.record(ctx, domain.EventLoginFailed, userID, email)
	return domain.ErrInvalidCredentials
}

func (s *AuthService) record(ctx context.Context, typ domain.AuthEventType, userID, identifier string) {
	if s.audit == nil {
		return
	}
	ev := &domain.AuthEvent{
		Type:       typ,
		UserID:     userID,
		Identifier: identifier,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.audit.InsertAuthEvent(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event", string(typ)).Msg("failed to insert auth event")
	}
}

func validateCredentials(username, email, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	case domain.NormalizeEmail(email) == "":
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	case len(password) > maxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	return nil
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateCredential):
		return "duplicate"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
