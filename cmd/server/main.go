package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	redislib "github.com/redis/go-redis/v9"

	rediscache "github.com/aeromarket/drone-service/internal/adapter/cache/redis"
	"github.com/aeromarket/drone-service/internal/adapter/httpapi"
	natspub "github.com/aeromarket/drone-service/internal/adapter/messaging/nats"
	"github.com/aeromarket/drone-service/internal/adapter/repository/mongodb"
	"github.com/aeromarket/drone-service/internal/config"
	"github.com/aeromarket/drone-service/internal/platform/logger"
	"github.com/aeromarket/drone-service/internal/platform/metrics"
	"github.com/aeromarket/drone-service/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Starting service", zap.String("service_name", cfg.ServiceName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongodb.NewMongoDBConnection(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			appLogger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDatabase)
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	droneRepo, err := mongodb.NewDroneRepository(ctx, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize drone repository", zap.Error(err))
	}
	userRepo := mongodb.NewUserRepository(db, appLogger)

	// the cache is an optimization: a Redis outage must not keep the
	// service from starting
	var droneCache usecase.DroneCache
	var redisClient *redislib.Client
	redisClient, err = rediscache.NewRedisClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
	} else {
		defer func() { _ = redisClient.Close() }()
		droneCache = rediscache.NewDroneCache(redisClient, cfg.DroneCacheTTL, appLogger)
		appLogger.Info("Connected to Redis", zap.String("address", cfg.RedisAddress))
	}

	var publisher usecase.EventPublisher
	natsPublisher, err := natspub.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Warn("NATS unavailable, continuing without event publishing", zap.Error(err))
	} else {
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	mm := metrics.NewMetricsManager(cfg.ServiceName)

	catalogUC := usecase.NewCatalogUsecase(droneRepo, droneCache, publisher, appLogger)
	favoriteUC := usecase.NewFavoriteUsecase(userRepo, droneRepo, appLogger)
	reviewUC := usecase.NewReviewUsecase(droneRepo, droneCache, publisher, appLogger)
	lifecycleUC := usecase.NewLifecycleUsecase(droneRepo, userRepo, droneCache, publisher, appLogger)

	handler := httpapi.NewHandler(catalogUC, favoriteUC, reviewUC, lifecycleUC, mm, appLogger)
	router := httpapi.NewRouter(handler, mm)

	go func() {
		if err := metrics.StartMetricsServer(cfg.PrometheusMetricsPort, appLogger, mm.Registry); err != nil {
			appLogger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		serverErrors <- httpServer.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	case sig := <-quit:
		appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
		_ = httpServer.Close()
	}

	appLogger.Info("Service stopped")
}
