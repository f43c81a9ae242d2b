package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle-escrow-service/config"
	httpHandler "vehicle-escrow-service/internal/adapter/http/handler"
	pgStorage "vehicle-escrow-service/internal/adapter/storage/postgres"
	redisStorage "vehicle-escrow-service/internal/adapter/storage/redis"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/internal/service"
	"vehicle-escrow-service/pkg/logger"
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
		Msg("Starting Vehicle Escrow Service")

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
	escrowRepo := pgStorage.NewEscrowRepo(pool)
	eventRepo := pgStorage.NewEventStoreRepo(pool)
	depositRepo := pgStorage.NewDepositRepo(pool)
	verificationRepo := pgStorage.NewVerificationRepo(pool)
	settlementRepo := pgStorage.NewSettlementRepo(pool)
	disputeRepo := pgStorage.NewDisputeRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Outbound event publisher (redis pub/sub)
	publisher := redisStorage.NewEventPublisher(rdb, cfg.Escrow.EventChannel)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, log)
	escrowSvc := service.NewEscrowService(escrowRepo, eventRepo, disputeRepo, transactor, publisher, cfg.Escrow.DefaultFeeRate, log)
	depositSvc := service.NewDepositService(escrowRepo, eventRepo, depositRepo, transactor, publisher, log)
	verificationSvc := service.NewVerificationService(escrowRepo, eventRepo, verificationRepo, transactor, publisher, log)
	settlementSvc := service.NewSettlementService(escrowRepo, eventRepo, settlementRepo, transactor, publisher, log)
	disputeSvc := service.NewDisputeService(escrowRepo, eventRepo, disputeRepo, transactor, publisher, log)
	eventSvc := service.NewEventSourcingService(escrowRepo, eventRepo, log)

	// Initialize rate limit store
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		EscrowSvc:       escrowSvc,
		DepositSvc:      depositSvc,
		VerificationSvc: verificationSvc,
		SettlementSvc:   settlementSvc,
		DisputeSvc:      disputeSvc,
		EventSvc:        eventSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Logger:          log,
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
