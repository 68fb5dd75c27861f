package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/infra/cache"
	"github.com/bbwallet/portal-bfa-go/internal/infra/kv"
	"github.com/bbwallet/portal-bfa-go/internal/infra/observability"
	"github.com/bbwallet/portal-bfa-go/internal/service"
	"github.com/bbwallet/portal-bfa-go/internal/store"

	"go.uber.org/zap"
)

// newTestServer builds the full router over a seeded in-memory substrate.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := kv.NewMemory()
	logger := zap.NewNop()
	if err := store.Seed(context.Background(), mem, logger); err != nil {
		t.Fatalf("seed: %v", err)
	}

	metrics := observability.NewMetrics()
	companyCache := cache.New[[]domain.Company](0)
	stores := store.NewStores(mem, metrics, logger)
	auth := store.NewAuth(mem, logger)

	dealSvc := service.NewDealService(stores, companyCache, metrics, logger)
	portfolioSvc := service.NewPortfolioService(stores, companyCache, metrics, logger)
	accountSvc := service.NewAccountService(stores, auth, logger)
	authSvc := service.NewAuthService(auth, logger)

	router := NewRouter(dealSvc, portfolioSvc, accountSvc, authSvc, metrics, nil, logger)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", path, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any, wantStatus int, out any) {
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

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t)

	var health domain.HealthStatus
	getJSON(t, srv, "/healthz", http.StatusOK, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q", health.Status)
	}
}

func TestRouter_HealthzDegradedBackend(t *testing.T) {
	failing := func(context.Context) error { return errors.New("record service down") }

	rec := httptest.NewRecorder()
	healthzHandler(failing)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var health domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "degraded" {
		t.Errorf("status = %q, want degraded", health.Status)
	}
	if len(health.Services) != 2 || health.Services[1].Status != "degraded" {
		t.Errorf("services = %+v", health.Services)
	}
}

func TestRouter_Ping(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRouter_Metrics(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRouter_ListCompanies(t *testing.T) {
	srv := newTestServer(t)

	var board domain.CompanyBoard
	getJSON(t, srv, "/v1/companies", http.StatusOK, &board)
	if len(board.Featured) != 1 || board.Featured[0].Name != "Neural Dynamics" {
		t.Errorf("featured = %+v", board.Featured)
	}
	if len(board.Others) != 1 || board.Others[0].Name != "Quantum Systems" {
		t.Errorf("others = %+v", board.Others)
	}
}

func TestRouter_GetCompanyNotFound(t *testing.T) {
	srv := newTestServer(t)
	getJSON(t, srv, "/v1/companies/ghost", http.StatusNotFound, nil)
}

func TestRouter_ListDeals(t *testing.T) {
	srv := newTestServer(t)

	var board domain.DealBoard
	getJSON(t, srv, "/v1/deals", http.StatusOK, &board)
	if len(board.Open) != 2 {
		t.Fatalf("open = %d, want 2", len(board.Open))
	}
	for _, listing := range board.Open {
		if listing.CompanyName == "" {
			t.Errorf("listing %s missing company join", listing.ID)
		}
	}
}

func TestRouter_GetDeal(t *testing.T) {
	srv := newTestServer(t)

	var detail domain.DealDetail
	getJSON(t, srv, "/v1/deals/deal-1", http.StatusOK, &detail)
	if detail.Deal.ID != "deal-1" {
		t.Errorf("deal = %+v", detail.Deal)
	}
	if detail.Company == nil || detail.Company.Name != "Neural Dynamics" {
		t.Errorf("company = %+v", detail.Company)
	}
}

func TestRouter_Stats(t *testing.T) {
	srv := newTestServer(t)

	var stats domain.PlatformStats
	getJSON(t, srv, "/v1/stats", http.StatusOK, &stats)
	if stats.ActiveCompanies != 2 || stats.OpenDeals != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	getJSON(t, srv, "/v1/dashboard", http.StatusUnauthorized, nil)
	getJSON(t, srv, "/v1/profile", http.StatusUnauthorized, nil)
	postJSON(t, srv, "/v1/deals/deal-1/investments",
		domain.InvestmentRequest{Amount: 25000}, http.StatusUnauthorized, nil)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var session domain.Session
	getJSON(t, srv, "/v1/auth/session", http.StatusOK, &session)
	if session.Authenticated {
		t.Error("fresh profile should be unauthenticated")
	}

	var user domain.User
	postJSON(t, srv, "/v1/auth/login", nil, http.StatusOK, &user)
	if user.Email != "local-user@example.com" {
		t.Errorf("login identity = %q", user.Email)
	}

	getJSON(t, srv, "/v1/auth/session", http.StatusOK, &session)
	if !session.Authenticated || session.User == nil {
		t.Errorf("post-login session = %+v", session)
	}

	postJSON(t, srv, "/v1/auth/logout", nil, http.StatusNoContent, nil)
	getJSON(t, srv, "/v1/auth/session", http.StatusOK, &session)
	if session.Authenticated {
		t.Error("expected unauthenticated after logout")
	}
}

func TestRouter_InvestFlow(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv, "/v1/auth/login", nil, http.StatusOK, nil)

	var investment domain.Investment
	postJSON(t, srv, "/v1/deals/deal-1/investments",
		domain.InvestmentRequest{Amount: 25000}, http.StatusCreated, &investment)
	if investment.Shares != 2000 {
		t.Errorf("shares = %v", investment.Shares)
	}

	var dashboard domain.Dashboard
	getJSON(t, srv, "/v1/dashboard", http.StatusOK, &dashboard)
	if len(dashboard.Investments) != 1 || dashboard.TotalInvested != 25000 {
		t.Errorf("dashboard = %+v", dashboard)
	}
}

func TestRouter_InvestValidation(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/v1/auth/login", nil, http.StatusOK, nil)

	postJSON(t, srv, "/v1/deals/deal-1/investments",
		domain.InvestmentRequest{Amount: 100}, http.StatusBadRequest, nil)
	postJSON(t, srv, "/v1/deals/ghost/investments",
		domain.InvestmentRequest{Amount: 25000}, http.StatusNotFound, nil)
}

func TestRouter_NDAFlow(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/v1/auth/login", nil, http.StatusOK, nil)

	var nda domain.NDA
	postJSON(t, srv, "/v1/deals/deal-1/nda", nil, http.StatusCreated, &nda)
	if nda.DealID != "deal-1" || nda.UserEmail != "local-user@example.com" {
		t.Errorf("nda = %+v", nda)
	}

	var detail domain.DealDetail
	getJSON(t, srv, "/v1/deals/deal-1", http.StatusOK, &detail)
	if !detail.NDASigned {
		t.Error("expected NDASigned after signing")
	}
}

func TestRouter_AccessRequest(t *testing.T) {
	srv := newTestServer(t)

	var created domain.AccessRequest
	postJSON(t, srv, "/v1/access-requests", domain.AccessRequest{
		FullName:     "Jordan Vale",
		Email:        "jordan@example.com",
		InvestorType: "Individual",
	}, http.StatusCreated, &created)
	if created.ID == "" || created.CreatedDate == "" {
		t.Errorf("generated fields missing: %+v", created)
	}

	postJSON(t, srv, "/v1/access-requests", domain.AccessRequest{
		FullName: "No Email",
	}, http.StatusBadRequest, nil)
}

func TestRouter_ProfileEntities(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/v1/auth/login", nil, http.StatusOK, nil)

	var entity domain.InvestmentEntity
	postJSON(t, srv, "/v1/profile/entities", domain.InvestmentEntity{
		EntityType: "LLC",
		EntityName: "Holdings LLC",
	}, http.StatusCreated, &entity)
	if entity.ID == "" {
		t.Errorf("entity id missing: %+v", entity)
	}

	var profile domain.Profile
	getJSON(t, srv, "/v1/profile", http.StatusOK, &profile)
	if len(profile.Entities) != 1 || profile.Entities[0].EntityName != "Holdings LLC" {
		t.Errorf("profile entities = %+v", profile.Entities)
	}
}

func TestRouter_StoreMetricsSnapshot(t *testing.T) {
	srv := newTestServer(t)

	getJSON(t, srv, "/v1/deals", http.StatusOK, nil)

	var snapshot domain.StoreMetrics
	getJSON(t, srv, "/v1/metrics/store", http.StatusOK, &snapshot)
	if snapshot.Reads == 0 {
		t.Error("expected non-zero reads after listing deals")
	}
}
