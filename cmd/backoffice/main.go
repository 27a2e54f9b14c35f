package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/thushan99/homelife-backoffice/internal/app"
	"github.com/thushan99/homelife-backoffice/internal/eft"
	"github.com/thushan99/homelife-backoffice/internal/ledger"
	"github.com/thushan99/homelife-backoffice/internal/observability"
	"github.com/thushan99/homelife-backoffice/internal/platform/cache"
	"github.com/thushan99/homelife-backoffice/internal/platform/db"
	"github.com/thushan99/homelife-backoffice/internal/trades"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	eftAllocator := eft.NewAllocator(redisClient, cfg.EFTTimeout)
	eftHandler := eft.NewHandler(logger, eftAllocator)

	trustService := trust.NewService(ledgerService, eftAllocator, logger)

	draftStore := trades.NewDraftStore(cfg.DraftTTL)
	tradesRepo := trades.NewRepository(pool)
	tradesService := trades.NewService(tradesRepo, trustService, draftStore)
	tradesHandler := trades.NewHandler(logger, tradesService, ledgerService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		TradesHandler: tradesHandler,
		LedgerHandler: ledgerHandler,
		EFTHandler:    eftHandler,
		Metrics:       metrics,
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
