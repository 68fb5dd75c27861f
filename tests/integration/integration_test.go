package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/handler"
	"github.com/bbwallet/portal-bfa-go/internal/infra/cache"
	"github.com/bbwallet/portal-bfa-go/internal/infra/kv"
	"github.com/bbwallet/portal-bfa-go/internal/infra/observability"
	"github.com/bbwallet/portal-bfa-go/internal/infra/recordsvc"
	"github.com/bbwallet/portal-bfa-go/internal/infra/resilience"
	"github.com/bbwallet/portal-bfa-go/internal/service"
	"github.com/bbwallet/portal-bfa-go/internal/store"

	"go.uber.org/zap"
)

// TestIntegration_LocalBackendFullFlow exercises the whole portal over the
// seeded local store: browse, authenticate, sign an NDA, invest and read
// the dashboard back.
func TestIntegration_LocalBackendFullFlow(t *testing.T) {
	mem := kv.NewMemory()
	logger := zap.NewNop()
	if err := store.Seed(context.Background(), mem, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}

	metrics := observability.NewMetrics()
	companyCache := cache.New[[]domain.Company](time.Minute)
	stores := store.NewStores(mem, metrics, logger)
	auth := store.NewAuth(mem, logger)

	router := handler.NewRouter(
		service.NewDealService(stores, companyCache, metrics, logger),
		service.NewPortfolioService(stores, companyCache, metrics, logger),
		service.NewAccountService(stores, auth, logger),
		service.NewAuthService(auth, logger),
		metrics,
		nil,
		logger,
	)
	srv := httptest.NewServer(router)
	defer srv.Close()

	// 1. Visitor browses the portfolio and deal board.
	var companies domain.CompanyBoard
	mustGet(t, srv, "/v1/companies", &companies)
	if len(companies.Featured)+len(companies.Others) != 2 {
		t.Fatalf("companies = %+v", companies)
	}

	var board domain.DealBoard
	mustGet(t, srv, "/v1/deals", &board)
	if len(board.Open) != 2 {
		t.Fatalf("open deals = %d, want 2", len(board.Open))
	}

	// 2. Protected pages reject the visitor.
	resp, err := http.Get(srv.URL + "/v1/dashboard")
	if err != nil {
		t.Fatalf("GET /v1/dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dashboard status = %d, want 401", resp.StatusCode)
	}

	// 3. Login flips the persisted flag.
	var user domain.User
	mustPost(t, srv, "/v1/auth/login", nil, http.StatusOK, &user)
	if user.Email != "local-user@example.com" {
		t.Fatalf("identity = %q", user.Email)
	}

	// 4. Sign the NDA, then invest.
	var nda domain.NDA
	mustPost(t, srv, "/v1/deals/deal-1/nda", nil, http.StatusCreated, &nda)
	if nda.TermsVersion == "" {
		t.Errorf("nda = %+v", nda)
	}

	var investment domain.Investment
	mustPost(t, srv, "/v1/deals/deal-1/investments",
		domain.InvestmentRequest{Amount: 50000}, http.StatusCreated, &investment)
	if investment.Shares != 4000 {
		t.Errorf("shares = %v, want 4000", investment.Shares)
	}

	// 5. The dashboard reflects the new holding.
	var dashboard domain.Dashboard
	mustGet(t, srv, "/v1/dashboard", &dashboard)
	if dashboard.TotalInvested != 50000 || dashboard.DealCount != 1 {
		t.Errorf("dashboard = %+v", dashboard)
	}
	if dashboard.Investments[0].CompanyName != "Neural Dynamics" {
		t.Errorf("join missing: %+v", dashboard.Investments[0])
	}

	// 6. State survives a service rebuild over the same substrate.
	srv.Close()
	stores2 := store.NewStores(mem, metrics, logger)
	auth2 := store.NewAuth(mem, logger)
	router2 := handler.NewRouter(
		service.NewDealService(stores2, cache.New[[]domain.Company](time.Minute), metrics, logger),
		service.NewPortfolioService(stores2, cache.New[[]domain.Company](time.Minute), metrics, logger),
		service.NewAccountService(stores2, auth2, logger),
		service.NewAuthService(auth2, logger),
		metrics,
		nil,
		logger,
	)
	srv2 := httptest.NewServer(router2)
	defer srv2.Close()

	mustGet(t, srv2, "/v1/dashboard", &dashboard)
	if dashboard.TotalInvested != 50000 {
		t.Errorf("holdings lost across rebuild: %+v", dashboard)
	}
}

// TestIntegration_RecordServiceBackend points the portal at a mock hosted
// record service and checks the same routes work over the remote port.
func TestIntegration_RecordServiceBackend(t *testing.T) {
	deals := []domain.Deal{
		{ID: "deal-1", CompanyID: "company-1", Title: "Remote Deal",
			Status: domain.DealStatusOpen, AccessLevel: domain.AccessLevelPublic},
	}
	companies := []domain.Company{
		{ID: "company-1", Name: "Neural Dynamics", Sector: "AI/ML",
			Status: domain.CompanyStatusActive},
	}

	recordServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		switch {
		case path == "auth/session":
			json.NewEncoder(w).Encode(map[string]bool{"authenticated": true})
		case path == "auth/me":
			json.NewEncoder(w).Encode(domain.User{
				Email: "investor@example.com", FullName: "Remote Investor", Role: "investor",
			})
		case strings.HasPrefix(path, "deals"):
			json.NewEncoder(w).Encode(deals)
		case strings.HasPrefix(path, "companies"):
			json.NewEncoder(w).Encode(companies)
		default:
			json.NewEncoder(w).Encode([]any{})
		}
	}))
	defer recordServer.Close()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	companyCache := cache.New[[]domain.Company](time.Minute)

	resilienceCfg := resilience.Config{
		MaxRetries:     1,
		InitialBackoff: time.Millisecond,
		MaxConcurrency: 10,
	}
	cb := resilience.NewCircuitBreaker("record-service-test")
	client := recordsvc.NewClient(&http.Client{Timeout: 5 * time.Second},
		recordServer.URL, "test-key", cb, resilienceCfg, logger)
	stores := recordsvc.NewStores(client)
	auth := recordsvc.NewSessionClient(client)

	router := handler.NewRouter(
		service.NewDealService(stores, companyCache, metrics, logger),
		service.NewPortfolioService(stores, companyCache, metrics, logger),
		service.NewAccountService(stores, auth, logger),
		service.NewAuthService(auth, logger),
		metrics,
		auth.Ping,
		logger,
	)
	srv := httptest.NewServer(router)
	defer srv.Close()

	var healthStatus domain.HealthStatus
	mustGet(t, srv, "/healthz", &healthStatus)
	if healthStatus.Status != "healthy" || len(healthStatus.Services) != 2 {
		t.Fatalf("health = %+v", healthStatus)
	}
	if healthStatus.Services[1].Name != "record-store" || healthStatus.Services[1].Status != "healthy" {
		t.Errorf("record service probe = %+v", healthStatus.Services[1])
	}

	var board domain.DealBoard
	mustGet(t, srv, "/v1/deals", &board)
	if len(board.Open) != 1 || board.Open[0].Title != "Remote Deal" {
		t.Fatalf("board = %+v", board)
	}
	if board.Open[0].CompanyName != "Neural Dynamics" {
		t.Errorf("company join missing: %+v", board.Open[0])
	}

	var session domain.Session
	mustGet(t, srv, "/v1/auth/session", &session)
	if !session.Authenticated || session.User == nil || session.User.Email != "investor@example.com" {
		t.Errorf("session = %+v", session)
	}

	// The remote session also unlocks protected routes.
	var dashboard domain.Dashboard
	mustGet(t, srv, "/v1/dashboard", &dashboard)
	if len(dashboard.Investments) != 0 {
		t.Errorf("dashboard = %+v", dashboard)
	}
}

func mustGet(t *testing.T, srv *httptest.Server, path string, out any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
}

func mustPost(t *testing.T, srv *httptest.Server, path string, body any, wantStatus int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(srv.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: status %d, want %d", path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("POST %s: decode: %v", path, err)
		}
	}
}
