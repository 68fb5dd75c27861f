package service

import (
	"context"
	"strings"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var accountTracer = otel.Tracer("service/account")

// AccountService serves the profile page and the request-access form.
type AccountService struct {
	stores port.Stores
	auth   port.Auth
	logger *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(stores port.Stores, auth port.Auth, logger *zap.Logger) *AccountService {
	return &AccountService{stores: stores, auth: auth, logger: logger}
}

// Profile returns the current identity together with its investment
// vehicles, newest first.
func (s *AccountService) Profile(ctx context.Context) (*domain.Profile, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.Profile")
	defer span.End()

	user, err := s.auth.Me(ctx)
	if err != nil {
		return nil, err
	}

	entities, err := s.stores.Entities.Filter(
		ctx, map[string]any{"created_by": user.Email},
		"-created_date", 100,
	)
	if err != nil {
		return nil, err
	}

	return &domain.Profile{User: *user, Entities: entities}, nil
}

// CreateEntity registers a new investment vehicle for the current identity.
func (s *AccountService) CreateEntity(ctx context.Context, entity domain.InvestmentEntity) (*domain.InvestmentEntity, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.CreateEntity")
	defer span.End()
	span.SetAttributes(attribute.String("entity.type", entity.EntityType))

	if strings.TrimSpace(entity.EntityName) == "" {
		return nil, &domain.ErrValidation{Field: "entity_name", Message: "entity name is required"}
	}
	if !domain.ValidEntityType(entity.EntityType) {
		return nil, &domain.ErrValidation{Field: "entity_type", Message: "unknown entity type"}
	}

	created, err := s.stores.Entities.Create(ctx, entity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("investment entity created",
		zap.String("entity_id", created.ID),
		zap.String("entity_type", created.EntityType))
	return &created, nil
}

// SubmitAccessRequest records a request-access form submission.
func (s *AccountService) SubmitAccessRequest(ctx context.Context, req domain.AccessRequest) (*domain.AccessRequest, error) {
	ctx, span := accountTracer.Start(ctx, "AccountService.SubmitAccessRequest")
	defer span.End()

	if strings.TrimSpace(req.FullName) == "" {
		return nil, &domain.ErrValidation{Field: "full_name", Message: "full name is required"}
	}
	if !strings.Contains(req.Email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "a valid email is required"}
	}
	if req.InvestorType == "" {
		return nil, &domain.ErrValidation{Field: "investor_type", Message: "investor type is required"}
	}

	created, err := s.stores.AccessRequests.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("access request submitted",
		zap.String("request_id", created.ID),
		zap.String("investor_type", created.InvestorType))
	return &created, nil
}
