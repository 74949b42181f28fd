package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stresslens/internal/cache"
	"stresslens/internal/config"
	"stresslens/internal/db"
	"stresslens/internal/handlers"
	"stresslens/internal/health"
	"stresslens/internal/observability"
	"stresslens/internal/services"
)

// @title stresslens API
// @version 1.0
// @description Stress scan and habit aggregation with risk scoring.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, logger, cfg.Otel, cfg.AppEnv)

	dbConn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	defer dbConn.Close()
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("failed migrations", zap.Error(err))
	}

	vault, err := services.NewUserVault(cfg.EncryptionKey, cfg.BlindIndexKey)
	if err != nil {
		logger.Fatal("invalid encryption keys", zap.Error(err))
	}
	if !vault.Sealing() {
		logger.Warn("ENCRYPTION_KEY not set; user PII is stored in plaintext")
	}

	predictionCache := newCache(cfg, logger)

	users := db.NewUserStore(dbConn)
	records := db.NewRecordStore(dbConn)
	// Stored rows are already canonical 0-100; only ingest applies the configured input scale.
	engine := health.NewEngine(health.WithLocation(cfg.Location))
	predictions := services.NewPredictionService(records, engine, predictionCache, logger)
	ingest := services.NewRecordService(records, health.NewNormalizer(cfg.StressScale), predictions, logger)

	router := handlers.NewRouter(handlers.RouterDeps{
		Log:         logger,
		JWTSecret:   cfg.JWTSecret,
		Users:       users,
		Records:     records,
		Vault:       vault,
		Access:      services.NewAccess(users),
		Predictions: predictions,
		Ingest:      ingest,
		TrendDays:   cfg.TrendDefaultDays,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("model_version", predictions.ModelVersion()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if c, ok := predictionCache.(*cache.RedisCache); ok {
		_ = c.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.Production() {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func newCache(cfg config.Config, logger *zap.Logger) cache.PredictionCache {
	if cfg.RedisAddr == "" || cfg.PredictionCacheTTL == 0 {
		return cache.Noop{}
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.PredictionCacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, prediction cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return cache.Noop{}
	}
	logger.Info("prediction cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.PredictionCacheTTL))
	return c
}
