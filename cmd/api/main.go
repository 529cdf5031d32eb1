package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenfi-wallet/config"
	httpHandler "zenfi-wallet/internal/adapter/http/handler"
	pgStorage "zenfi-wallet/internal/adapter/storage/postgres"
	redisStorage "zenfi-wallet/internal/adapter/storage/redis"
	"zenfi-wallet/internal/core/ports"
	"zenfi-wallet/internal/service"
	"zenfi-wallet/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting ZenFi Wallet API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	profileRepo := pgStorage.NewProfileRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	claimRepo := pgStorage.NewClaimRepo(pool)
	withdrawalRepo := pgStorage.NewWithdrawalRepo(pool)
	notifRepo := pgStorage.NewNotificationRepo(pool)
	messageRepo := pgStorage.NewMessageRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	cooldownStore := redisStorage.NewCooldownStore(rdb)
	changeFeed := redisStorage.NewChangeFeed(rdb, log)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	uploadSvc := service.NewUploadService(cfg.Upload)

	// Initialize business services
	authSvc := service.NewAuthService(profileRepo, hashSvc, tokenSvc, log)
	claimSvc := service.NewClaimService(profileRepo, claimRepo, cooldownStore, changeFeed, transactor, cfg.Claim, log)
	paymentSvc := service.NewPaymentService(paymentRepo, profileRepo, changeFeed, transactor, log)
	withdrawalSvc := service.NewWithdrawalService(withdrawalRepo, profileRepo, transactor, log)
	notifSvc := service.NewNotificationService(notifRepo, profileRepo, log)
	messageSvc := service.NewMessageService(messageRepo)
	adminSvc := service.NewAdminService(profileRepo, paymentRepo, changeFeed, transactor, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		ClaimSvc:       claimSvc,
		PaymentSvc:     paymentSvc,
		WithdrawalSvc:  withdrawalSvc,
		NotifSvc:       notifSvc,
		MessageSvc:     messageSvc,
		AdminSvc:       adminSvc,
		UploadSvc:      uploadSvc,
		ProfileRepo:    profileRepo,
		TokenSvc:       tokenSvc,
		Feed:           changeFeed,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
