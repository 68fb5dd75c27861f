// Package service provides the business logic layer (use cases) behind the
// portal pages: deal listings, portfolio, dashboard, profile, access
// requests and the session stub.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/observability"
	"github.com/bbwallet/portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var dealTracer = otel.Tracer("service/deals")

const (
	companyCacheKey = "companies:all"

	// ndaTermsVersion is stamped on every signed NDA.
	ndaTermsVersion = "v1"
)

// DealService serves the deals pages: listings, detail, NDA flow and
// investment creation.
type DealService struct {
	stores  port.Stores
	cache   port.Cache[[]domain.Company]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDealService creates a new deal service.
func NewDealService(stores port.Stores, cache port.Cache[[]domain.Company], metrics *observability.Metrics, logger *zap.Logger) *DealService {
	return &DealService{stores: stores, cache: cache, metrics: metrics, logger: logger}
}

// ListDeals returns the deal board: open and closed listings joined with
// company display fields. Unauthenticated viewers see public deals only.
// status and sector filter when non-empty.
func (s *DealService) ListDeals(ctx context.Context, status, sector string, authed bool) (*domain.DealBoard, error) {
	ctx, span := dealTracer.Start(ctx, "DealService.ListDeals")
	defer span.End()
	span.SetAttributes(attribute.Bool("authed", authed))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("deals.list", time.Since(start)) }()

	deals, err := s.stores.Deals.List(ctx, "-created_date", 50)
	if err != nil {
		return nil, err
	}

	companies := s.companyIndex(ctx)

	board := &domain.DealBoard{
		Open:   []domain.DealListing{},
		Closed: []domain.DealListing{},
	}
	for _, deal := range deals {
		if !authed && !deal.IsPublic() {
			continue
		}
		if status != "" && deal.Status != status {
			continue
		}

		listing := joinCompany(deal, companies)
		if sector != "" && !strings.EqualFold(listing.CompanySector, sector) {
			continue
		}

		if deal.IsOpen() {
			board.Open = append(board.Open, listing)
		} else {
			board.Closed = append(board.Closed, listing)
		}
	}

	return board, nil
}

// FeaturedDeals returns the open deals shown on the home page.
func (s *DealService) FeaturedDeals(ctx context.Context, authed bool) ([]domain.DealListing, error) {
	ctx, span := dealTracer.Start(ctx, "DealService.FeaturedDeals")
	defer span.End()

	deals, err := s.stores.Deals.Filter(
		ctx, map[string]any{"status": domain.DealStatusOpen},
		"-created_date", 10,
	)
	if err != nil {
		return nil, err
	}

	companies := s.companyIndex(ctx)

	listings := make([]domain.DealListing, 0, len(deals))
	for _, deal := range deals {
		if !authed && !deal.IsPublic() {
			continue
		}
		listings = append(listings, joinCompany(deal, companies))
	}
	return listings, nil
}

// GetDeal returns the deal page payload. The company join tolerates a
// dangling company_id; a gated deal requires an authenticated session.
func (s *DealService) GetDeal(ctx context.Context, dealID, viewerEmail string, authed bool) (*domain.DealDetail, error) {
	ctx, span := dealTracer.Start(ctx, "DealService.GetDeal")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", dealID))

	deal, err := s.findDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !authed && !deal.IsPublic() {
		return nil, &domain.ErrUnauthorized{Message: "request access to view this deal"}
	}

	detail := &domain.DealDetail{Deal: *deal}

	if deal.CompanyID != "" {
		companies, err := s.stores.Companies.Filter(ctx, map[string]any{"id": deal.CompanyID}, "", 1)
		if err != nil {
			s.logger.Warn("deal company lookup failed",
				zap.String("deal_id", dealID),
				zap.String("company_id", deal.CompanyID),
				zap.Error(err),
			)
		} else if len(companies) > 0 {
			detail.Company = &companies[0]
		}
	}

	if viewerEmail != "" {
		ndas, err := s.stores.NDAs.Filter(
			ctx, map[string]any{"deal_id": dealID, "user_email": viewerEmail},
			"", 1,
		)
		if err == nil && len(ndas) > 0 {
			detail.NDASigned = true
		}
	}

	return detail, nil
}

// SignNDA records the viewer's confidentiality acknowledgment for a deal.
// Re-signing returns the existing record instead of creating a duplicate.
func (s *DealService) SignNDA(ctx context.Context, dealID, email string) (*domain.NDA, error) {
	ctx, span := dealTracer.Start(ctx, "DealService.SignNDA")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", dealID))

	if _, err := s.findDeal(ctx, dealID); err != nil {
		return nil, err
	}

	existing, err := s.stores.NDAs.Filter(
		ctx, map[string]any{"deal_id": dealID, "user_email": email},
		"", 1,
	)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	nda, err := s.stores.NDAs.Create(ctx, domain.NDA{
		DealID:       dealID,
		UserEmail:    email,
		AgreedAt:     time.Now().Format(time.RFC3339),
		TermsVersion: ndaTermsVersion,
		CreatedBy:    email,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("nda signed",
		zap.String("deal_id", dealID),
		zap.String("user_email", email),
	)
	return &nda, nil
}

// Invest creates an investment in an open deal. Shares are computed at the
// deal's share price when one is set.
func (s *DealService) Invest(ctx context.Context, dealID, email string, req *domain.InvestmentRequest) (*domain.Investment, error) {
	ctx, span := dealTracer.Start(ctx, "DealService.Invest")
	defer span.End()
	span.SetAttributes(attribute.String("deal.id", dealID))

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	deal, err := s.findDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !deal.IsOpen() {
		return nil, &domain.ErrValidation{Field: "deal", Message: "deal is not open for investment"}
	}
	if deal.MinimumInvestment > 0 && req.Amount < deal.MinimumInvestment {
		return nil, &domain.ErrValidation{Field: "amount", Message: "below the deal minimum"}
	}

	shares := float64(0)
	if deal.SharePrice > 0 {
		shares = req.Amount / deal.SharePrice
	}

	investment, err := s.stores.Investments.Create(ctx, domain.Investment{
		DealID:         dealID,
		CompanyID:      deal.CompanyID,
		Amount:         req.Amount,
		Shares:         shares,
		SharePrice:     deal.SharePrice,
		InvestmentDate: time.Now().Format("2006-01-02"),
		Status:         "pending",
		CreatedBy:      email,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("investment created",
		zap.String("investment_id", investment.ID),
		zap.String("deal_id", dealID),
		zap.Float64("amount", req.Amount),
	)
	return &investment, nil
}

// findDeal resolves a deal by id or returns ErrNotFound.
func (s *DealService) findDeal(ctx context.Context, dealID string) (*domain.Deal, error) {
	deals, err := s.stores.Deals.Filter(ctx, map[string]any{"id": dealID}, "", 1)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, &domain.ErrNotFound{Resource: "deal", ID: dealID}
	}
	return &deals[0], nil
}

// companyIndex returns companies keyed by id for joins, via the TTL cache.
// A failed load degrades to no join rather than failing the listing.
func (s *DealService) companyIndex(ctx context.Context) map[string]domain.Company {
	companies, ok := s.cache.Get(companyCacheKey)
	if ok {
		s.metrics.IncrCacheHit("companies")
	} else {
		s.metrics.IncrCacheMiss("companies")
		var err error
		companies, err = s.stores.Companies.List(ctx, "-created_date", 100)
		if err != nil {
			s.logger.Warn("company index load failed", zap.Error(err))
			return nil
		}
		s.cache.Set(companyCacheKey, companies)
	}

	index := make(map[string]domain.Company, len(companies))
	for _, c := range companies {
		index[c.ID] = c
	}
	return index
}

func joinCompany(deal domain.Deal, companies map[string]domain.Company) domain.DealListing {
	listing := domain.DealListing{Deal: deal}
	if company, ok := companies[deal.CompanyID]; ok {
		listing.CompanyName = company.Name
		listing.CompanySector = company.Sector
		listing.CompanyStage = company.Stage
	}
	return listing
}
