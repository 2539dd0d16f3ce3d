package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/order-ingest/internal/api"
	"github.com/example/order-ingest/internal/application/factories/infrastructure"
	"github.com/example/order-ingest/internal/archive"
	"github.com/example/order-ingest/internal/config"
	"github.com/example/order-ingest/internal/infrastructure/postgres"
	"github.com/example/order-ingest/internal/usecase"

	go_redis "github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, pgPool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	blobClient, err := infraFactory.Blob()
	if err != nil {
		logger.Error("failed to init blob store", "error", err)
		os.Exit(1)
	}

	var redisClient *go_redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = infraFactory.Redis(ctx)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
	}

	writer := archive.NewWriter(blobClient, cfg.Blob.Bucket)
	orderRepo := postgres.NewOrderRepository(pgPool)

	reserveUC := usecase.NewReserveOrder(writer, cfg.Blob.Bucket)
	getUC := usecase.NewGetOrder(redisClient, orderRepo)

	handlers := api.NewHandlers(reserveUC, getUC)
	apiHandler := api.NewRouter(handlers, redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: apiHandler,
	}

	go func() {
		logger.Info("server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
