package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vecindario/luzvecinal/internal/app"
	"github.com/vecindario/luzvecinal/internal/auth"
	"github.com/vecindario/luzvecinal/internal/lookup"
	"github.com/vecindario/luzvecinal/internal/lots"
	"github.com/vecindario/luzvecinal/internal/observability"
	"github.com/vecindario/luzvecinal/internal/platform/cache"
	"github.com/vecindario/luzvecinal/internal/platform/db"
	"github.com/vecindario/luzvecinal/internal/receipts"
	"github.com/vecindario/luzvecinal/internal/reports"
	"github.com/vecindario/luzvecinal/internal/shared"
	"github.com/vecindario/luzvecinal/internal/tariffs"
	"github.com/vecindario/luzvecinal/internal/view"
)

// lotsAdapter bridges the lot registry into the receipt pages without the
// receipts package importing the lots package.
type lotsAdapter struct {
	service *lots.Service
}

func (a lotsAdapter) Options(ctx context.Context) ([]receipts.LotOption, error) {
	all, _, err := a.service.List(ctx, lots.ListFilters{Limit: 1000})
	if err != nil {
		return nil, err
	}
	options := make([]receipts.LotOption, 0, len(all))
	for _, l := range all {
		options = append(options, receipts.LotOption{
			ID:         l.ID,
			Code:       l.Code(),
			FirstNames: l.FirstNames,
			LastNames:  l.LastNames,
		})
	}
	return options, nil
}

func (a lotsAdapter) Refs(ctx context.Context) ([]receipts.LotRef, error) {
	return a.service.ListRefs(ctx)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "luzvecinal_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	tariffService := tariffs.NewService(tariffs.NewRepository(dbpool), receipts.ComputeCharge)
	tariffHandler := tariffs.NewHandler(logger, tariffService, templates, csrfManager)

	lotService := lots.NewService(lots.NewRepository(dbpool))
	lotHandler := lots.NewHandler(logger, lotService, templates, csrfManager)

	receiptService := receipts.NewService(receipts.NewRepository(dbpool), tariffService)
	receiptHandler := receipts.NewHandler(logger, receiptService, tariffService, lotsAdapter{service: lotService}, templates, csrfManager)

	lookupService := lookup.NewService(lookup.NewRepository(dbpool), cfg.WhatsAppNumber)
	lookupHandler := lookup.NewHandler(logger, lookupService, templates)

	reportService := reports.NewService(reports.NewRepository(dbpool), tariffService)
	reportHandler := reports.NewHandler(logger, reportService, templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Templates:       templates,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		LotsHandler:     lotHandler,
		TariffsHandler:  tariffHandler,
		ReceiptsHandler: receiptHandler,
		LookupHandler:   lookupHandler,
		ReportsHandler:  reportHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
