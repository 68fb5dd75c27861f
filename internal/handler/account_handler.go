package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Account: GET /v1/profile, POST /v1/profile/entities,
// POST /v1/access-requests
// ============================================================

func profileHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		profile, err := svc.Profile(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func createEntityHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/profile/entities")
		defer span.End()

		var entity domain.InvestmentEntity
		if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.CreateEntity(ctx, entity)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func accessRequestHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/access-requests")
		defer span.End()

		var req domain.AccessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.SubmitAccessRequest(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}
