package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Deals: GET /v1/deals, GET /v1/deals/featured,
// GET /v1/deals/{dealId}, POST /v1/deals/{dealId}/nda,
// POST /v1/deals/{dealId}/investments
// ============================================================

func listDealsHandler(svc *service.DealService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/deals")
		defer span.End()

		status := r.URL.Query().Get("status")
		sector := r.URL.Query().Get("sector")

		board, err := svc.ListDeals(ctx, status, sector, IsAuthenticated(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

func featuredDealsHandler(svc *service.DealService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/deals/featured")
		defer span.End()

		deals, err := svc.FeaturedDeals(ctx, IsAuthenticated(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deals": deals})
	}
}

func getDealHandler(svc *service.DealService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/deals/{dealId}")
		defer span.End()

		dealID := chi.URLParam(r, "dealId")
		if dealID == "" {
			writeError(w, http.StatusBadRequest, "dealId is required")
			return
		}
		span.SetAttributes(attribute.String("deal.id", dealID))

		detail, err := svc.GetDeal(ctx, dealID, SessionEmail(ctx), IsAuthenticated(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func signNDAHandler(svc *service.DealService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/deals/{dealId}/nda")
		defer span.End()

		dealID := chi.URLParam(r, "dealId")
		if dealID == "" {
			writeError(w, http.StatusBadRequest, "dealId is required")
			return
		}
		span.SetAttributes(attribute.String("deal.id", dealID))

		nda, err := svc.SignNDA(ctx, dealID, SessionEmail(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, nda)
	}
}

func investHandler(svc *service.DealService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/deals/{dealId}/investments")
		defer span.End()

		dealID := chi.URLParam(r, "dealId")
		if dealID == "" {
			writeError(w, http.StatusBadRequest, "dealId is required")
			return
		}
		span.SetAttributes(attribute.String("deal.id", dealID))

		var req domain.InvestmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		investment, err := svc.Invest(ctx, dealID, SessionEmail(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, investment)
	}
}
