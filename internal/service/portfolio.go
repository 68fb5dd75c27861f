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
	"golang.org/x/sync/errgroup"
)

var portfolioTracer = otel.Tracer("service/portfolio")

const activeCompanyCacheKey = "companies:active"

// PortfolioService serves the portfolio, dashboard and home-page stats.
type PortfolioService struct {
	stores  port.Stores
	cache   port.Cache[[]domain.Company]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(stores port.Stores, cache port.Cache[[]domain.Company], metrics *observability.Metrics, logger *zap.Logger) *PortfolioService {
	return &PortfolioService{stores: stores, cache: cache, metrics: metrics, logger: logger}
}

// ListCompanies returns active companies split into featured and regular
// rows, optionally filtered by sector. featuredOnly drops the regular rows.
func (s *PortfolioService) ListCompanies(ctx context.Context, sector string, featuredOnly bool) (*domain.CompanyBoard, error) {
	ctx, span := portfolioTracer.Start(ctx, "PortfolioService.ListCompanies")
	defer span.End()

	companies, err := s.activeCompanies(ctx)
	if err != nil {
		return nil, err
	}

	board := &domain.CompanyBoard{
		Featured: []domain.Company{},
		Others:   []domain.Company{},
	}
	for _, company := range companies {
		if sector != "" && !strings.EqualFold(company.Sector, sector) {
			continue
		}
		if company.IsFeatured {
			board.Featured = append(board.Featured, company)
		} else if !featuredOnly {
			board.Others = append(board.Others, company)
		}
	}
	return board, nil
}

// GetCompany resolves a single company by id.
func (s *PortfolioService) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	ctx, span := portfolioTracer.Start(ctx, "PortfolioService.GetCompany")
	defer span.End()
	span.SetAttributes(attribute.String("company.id", companyID))

	companies, err := s.stores.Companies.Filter(ctx, map[string]any{"id": companyID}, "", 1)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, &domain.ErrNotFound{Resource: "company", ID: companyID}
	}
	return &companies[0], nil
}

// Dashboard aggregates the identity's investments with company and deal
// joins. The three collection reads fan out concurrently.
func (s *PortfolioService) Dashboard(ctx context.Context, email string) (*domain.Dashboard, error) {
	ctx, span := portfolioTracer.Start(ctx, "PortfolioService.Dashboard")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("dashboard", time.Since(start)) }()

	var (
		investments []domain.Investment
		companies   []domain.Company
		deals       []domain.Deal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		investments, err = s.stores.Investments.Filter(
			gctx, map[string]any{"created_by": email},
			"-created_date", 50,
		)
		return err
	})
	g.Go(func() error {
		var err error
		companies, err = s.stores.Companies.List(gctx, "-created_date", 100)
		return err
	})
	g.Go(func() error {
		var err error
		deals, err = s.stores.Deals.List(gctx, "-created_date", 100)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	companyNames := make(map[string]string, len(companies))
	for _, c := range companies {
		companyNames[c.ID] = c.Name
	}
	dealTitles := make(map[string]string, len(deals))
	for _, d := range deals {
		dealTitles[d.ID] = d.Title
	}

	dashboard := &domain.Dashboard{
		Investments: make([]domain.DashboardInvestment, 0, len(investments)),
	}
	seenDeals := make(map[string]struct{})
	for _, inv := range investments {
		dashboard.Investments = append(dashboard.Investments, domain.DashboardInvestment{
			Investment:  inv,
			DealTitle:   dealTitles[inv.DealID],
			CompanyName: companyNames[inv.CompanyID],
		})
		dashboard.TotalInvested += inv.Amount
		dashboard.TotalShares += inv.Shares
		if inv.DealID != "" {
			seenDeals[inv.DealID] = struct{}{}
		}
	}
	dashboard.DealCount = len(seenDeals)

	return dashboard, nil
}

// Stats computes the home-page platform stats.
func (s *PortfolioService) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	ctx, span := portfolioTracer.Start(ctx, "PortfolioService.Stats")
	defer span.End()

	companies, err := s.activeCompanies(ctx)
	if err != nil {
		return nil, err
	}
	deals, err := s.stores.Deals.List(ctx, "-created_date", 0)
	if err != nil {
		return nil, err
	}
	investments, err := s.stores.Investments.List(ctx, "-created_date", 0)
	if err != nil {
		return nil, err
	}

	stats := &domain.PlatformStats{
		ActiveCompanies: len(companies),
		Investments:     len(investments),
	}
	for _, c := range companies {
		stats.TotalRaisedMM += c.TotalRaised
	}
	for _, d := range deals {
		if d.IsOpen() {
			stats.OpenDeals++
		}
	}
	return stats, nil
}

func (s *PortfolioService) activeCompanies(ctx context.Context) ([]domain.Company, error) {
	if companies, ok := s.cache.Get(activeCompanyCacheKey); ok {
		s.metrics.IncrCacheHit("companies")
		return companies, nil
	}
	s.metrics.IncrCacheMiss("companies")

	companies, err := s.stores.Companies.Filter(
		ctx, map[string]any{"status": domain.CompanyStatusActive},
		"-created_date", 100,
	)
	if err != nil {
		return nil, err
	}
	s.cache.Set(activeCompanyCacheKey, companies)
	return companies, nil
}
