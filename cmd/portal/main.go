package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bbwallet/portal-bfa-go/internal/config"
	"github.com/bbwallet/portal-bfa-go/internal/domain"
	"github.com/bbwallet/portal-bfa-go/internal/handler"
	"github.com/bbwallet/portal-bfa-go/internal/infra/cache"
	"github.com/bbwallet/portal-bfa-go/internal/infra/kv"
	"github.com/bbwallet/portal-bfa-go/internal/infra/observability"
	"github.com/bbwallet/portal-bfa-go/internal/infra/recordsvc"
	"github.com/bbwallet/portal-bfa-go/internal/infra/resilience"
	"github.com/bbwallet/portal-bfa-go/internal/port"
	"github.com/bbwallet/portal-bfa-go/internal/service"
	"github.com/bbwallet/portal-bfa-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_record_service", cfg.UseRecordService),
		zap.String("db_path", cfg.DBPath),
		zap.Bool("seed_sample_data", cfg.SeedSampleData),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "bbwallet-portal-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	companyCache := cache.New[[]domain.Company](cfg.CacheTTL)

	// --- Backend selection ---
	var stores port.Stores
	var auth port.Auth
	var health handler.HealthCheck

	if cfg.UseRecordService && cfg.RecordServiceURL != "" {
		logger.Info("using hosted record service as data backend",
			zap.String("record_service_url", cfg.RecordServiceURL),
		)

		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("record-service")
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

		client := recordsvc.NewClient(httpClient, cfg.RecordServiceURL, cfg.RecordServiceKey, cb, resilienceCfg, logger)
		session := recordsvc.NewSessionClient(client)
		stores = recordsvc.NewStores(client)
		auth = session
		health = session.Ping
	} else {
		logger.Info("using local record store as data backend")

		db, err := kv.OpenSQLite(cfg.DBPath)
		if err != nil {
			logger.Fatal("failed to open record store", zap.Error(err))
		}
		defer db.Close()

		if cfg.SeedSampleData {
			if err := store.Seed(context.Background(), db, logger); err != nil {
				logger.Fatal("failed to seed sample data", zap.Error(err))
			}
		}

		stores = store.NewStores(db, metrics, logger)
		auth = store.NewAuth(db, logger)
		health = db.Ping
	}

	// --- Services ---
	dealSvc := service.NewDealService(stores, companyCache, metrics, logger)
	portfolioSvc := service.NewPortfolioService(stores, companyCache, metrics, logger)
	accountSvc := service.NewAccountService(stores, auth, logger)
	authSvc := service.NewAuthService(auth, logger)

	// --- Router ---
	router := handler.NewRouter(dealSvc, portfolioSvc, accountSvc, authSvc, metrics, health, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
