package service

import (
	"context"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService exposes the pseudo-session over whichever Auth backend is
// active.
type AuthService struct {
	auth   port.Auth
	logger *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(auth port.Auth, logger *zap.Logger) *AuthService {
	return &AuthService{auth: auth, logger: logger}
}

// Session reports the current session state. The user field is populated
// only for authenticated sessions.
func (s *AuthService) Session(ctx context.Context) (*domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Session")
	defer span.End()

	authed, err := s.auth.IsAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	session := &domain.Session{Authenticated: authed}
	if authed {
		user, err := s.auth.Me(ctx)
		if err != nil {
			return nil, err
		}
		session.User = user
	}
	return session, nil
}

// Me returns the current identity regardless of session state.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()
	return s.auth.Me(ctx)
}

// Login marks the session authenticated and returns the identity.
func (s *AuthService) Login(ctx context.Context) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.auth.Login(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session opened", zap.String("email", user.Email))
	return user, nil
}

// Logout clears the session flag.
func (s *AuthService) Logout(ctx context.Context) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.auth.Logout(ctx); err != nil {
		return err
	}
	s.logger.Info("session closed")
	return nil
}
