package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/kodbank/kodbank/internal/adapter/http"
	"github.com/kodbank/kodbank/internal/adapter/http/handler"
	"github.com/kodbank/kodbank/internal/adapter/http/middleware"
	memoryRepo "github.com/kodbank/kodbank/internal/adapter/repository/memory"
	postgresRepo "github.com/kodbank/kodbank/internal/adapter/repository/postgres"
	redisRepo "github.com/kodbank/kodbank/internal/adapter/repository/redis"
	"github.com/kodbank/kodbank/internal/infrastructure/auth"
	"github.com/kodbank/kodbank/internal/infrastructure/config"
	"github.com/kodbank/kodbank/internal/infrastructure/logger"
	"github.com/kodbank/kodbank/internal/infrastructure/metrics"
	"github.com/kodbank/kodbank/internal/infrastructure/notify"
	"github.com/kodbank/kodbank/internal/infrastructure/postgres"
	"github.com/kodbank/kodbank/internal/infrastructure/redis"
	"github.com/kodbank/kodbank/internal/usecase"
)

func main() {
	// .env is optional; the environment wins over the file.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	if cfg.JWTSecret == "" {
		appLogger.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool, cfg.LockTimeout)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	refGen := postgresRepo.NewULIDRefGenerator()

	// Step-up challenge store: Redis when configured, process memory
	// otherwise.
	var (
		challengeStore usecase.ChallengeStore
		redisClient    *goredis.Client
	)

	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()

		challengeStore = redisRepo.NewChallengeStore(redisClient, cfg.ChallengeTTL)
		appLogger.Info().Msg("connected to redis")
	} else {
		challengeStore = memoryRepo.NewChallengeStore(cfg.ChallengeTTL)
		appLogger.Warn().Msg("REDIS_URL not set, keeping step-up challenges in process memory")
	}

	notifier := notify.NewLogNotifier(appLogger)
	appMetrics := metrics.New()

	// Initialize use cases
	transactionUC := usecase.NewTransactionUseCase(
		txManager, accountRepo, transactionRepo, auditRepo,
		challengeStore, notifier, refGen, cfg.Limits(), appMetrics, appLogger,
	)
	adminUC := usecase.NewAdminUseCase(accountRepo, transactionRepo, auditRepo, appLogger)

	// Initialize handlers
	transactionHandler := handler.NewTransactionHandler(transactionUC)
	adminHandler := handler.NewAdminHandler(adminUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: transactionHandler,
		AdminHandler:       adminHandler,
		HealthHandler:      healthHandler,
		Auth:               middleware.AuthMiddleware(jwtManager, appMetrics),
		Logging:            middleware.NewLoggingMiddleware(appLogger),
		Metrics:            middleware.NewMetricsMiddleware(appMetrics),
		Recovery:           middleware.NewRecoveryMiddleware(appLogger),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
