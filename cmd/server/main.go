package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/adapter/adsapi"
	redisCache "github.com/encoreinstant/avito-moderation/internal/adapter/cache/redis"
	natsPublisher "github.com/encoreinstant/avito-moderation/internal/adapter/messaging/nats"
	"github.com/encoreinstant/avito-moderation/internal/config"
	"github.com/encoreinstant/avito-moderation/internal/handler"
	"github.com/encoreinstant/avito-moderation/internal/middleware"
	"github.com/encoreinstant/avito-moderation/internal/platform/metrics"
	"github.com/encoreinstant/avito-moderation/internal/router"
	"github.com/encoreinstant/avito-moderation/internal/usecase"
)

func main() {
	configPath := "config.yaml"
	if cp := os.Getenv("CONFIG_PATH"); cp != "" {
		configPath = cp
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapConfig := zap.NewProductionConfig()
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully!",
		zap.String("http_port", cfg.HTTP.Port),
		zap.String("upstream_base_url", cfg.Upstream.BaseURL),
	)

	redisClient, err := redisCache.NewRedisClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	cacheRepo := redisCache.NewRedisCacheRepository(redisClient, logger)

	var notifier usecase.DecisionNotifier
	if cfg.NATS.Enabled {
		publisher, err := natsPublisher.NewNATSPublisher(&cfg.NATS, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
		notifier = publisher
	} else {
		logger.Info("NATS publishing disabled")
	}

	mm := metrics.NewMetricsManager("moderation_dashboard")
	go func() {
		if err := metrics.StartMetricsServer(cfg.Metrics.Port, logger, mm.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	apiClient := adsapi.NewClient(adsapi.Options{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, logger)

	listingUC := usecase.NewListingUsecase(apiClient, cacheRepo, logger)
	navigationUC := usecase.NewNavigationUsecase(apiClient, cacheRepo, logger)
	moderationUC := usecase.NewModerationUsecase(apiClient, cacheRepo, notifier, mm, logger)
	statsUC := usecase.NewStatsUsecase(apiClient, apiClient, cacheRepo, logger)
	prefsUC := usecase.NewPreferencesUsecase(cacheRepo, logger)

	adsHandler := handler.NewAdsHandler(listingUC, navigationUC, moderationUC, prefsUC, logger)
	statsHandler := handler.NewStatsHandler(statsUC, logger)
	prefsHandler := handler.NewPrefsHandler(prefsUC, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(mm))
	router.SetupRoutes(r, adsHandler, statsHandler, prefsHandler, cfg.Auth.JWTSecret)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("Starting moderation dashboard HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
