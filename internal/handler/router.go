package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/observability"
	"github.com/bbwallet/portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// HealthCheck probes the active record backend. nil means no probe is
// configured and the backend is reported healthy.
type HealthCheck func(ctx context.Context) error

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the investor portal frontend.
func NewRouter(
	dealSvc *service.DealService,
	portfolioSvc *service.PortfolioService,
	accountSvc *service.AccountService,
	authSvc *service.AuthService,
	metrics *observability.Metrics,
	health HealthCheck,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(health))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(authSvc, logger))

		// Public pages
		r.Get("/companies", listCompaniesHandler(portfolioSvc, logger))
		r.Get("/companies/{companyId}", getCompanyHandler(portfolioSvc, logger))
		r.Get("/deals", listDealsHandler(dealSvc, logger))
		r.Get("/deals/featured", featuredDealsHandler(dealSvc, logger))
		r.Get("/deals/{dealId}", getDealHandler(dealSvc, logger))
		r.Get("/stats", statsHandler(portfolioSvc, logger))
		r.Post("/access-requests", accessRequestHandler(accountSvc, logger))

		// Session
		r.Route("/auth", func(r chi.Router) {
			r.Get("/session", authSessionHandler(authSvc, logger))
			r.Get("/me", authMeHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/logout", authLogoutHandler(authSvc, logger))
		})

		// Store counters
		r.Get("/metrics/store", storeMetricsHandler(metrics, logger))

		// Protected pages
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(logger))
			r.Get("/dashboard", dashboardHandler(portfolioSvc, logger))
			r.Get("/profile", profileHandler(accountSvc, logger))
			r.Post("/profile/entities", createEntityHandler(accountSvc, logger))
			r.Post("/deals/{dealId}/nda", signNDAHandler(dealSvc, logger))
			r.Post("/deals/{dealId}/investments", investHandler(dealSvc, logger))
		})
	})

	return r
}

// ============================================================
// Health & metrics
// ============================================================

func healthzHandler(health HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "portal-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if health != nil {
			start := time.Now()
			err := health(r.Context())
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "record-store", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func storeMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetStoreSnapshot())
	}
}
