package handler

import (
	"vehicle-escrow-service/internal/adapter/http/middleware"
	redisStore "vehicle-escrow-service/internal/adapter/storage/redis"
	"vehicle-escrow-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	EscrowSvc       ports.EscrowService
	DepositSvc      ports.DepositService
	VerificationSvc ports.VerificationService
	SettlementSvc   ports.SettlementService
	DisputeSvc      ports.DisputeService
	EventSvc        ports.EventSourcingService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminOnly := middleware.RequireAdmin()

	escrowHandler := NewEscrowHandler(deps.EscrowSvc)
	depositHandler := NewDepositHandler(deps.DepositSvc)
	verificationHandler := NewVerificationHandler(deps.VerificationSvc)
	settlementHandler := NewSettlementHandler(deps.SettlementSvc)
	disputeHandler := NewDisputeHandler(deps.DisputeSvc)
	eventHandler := NewEventHandler(deps.EventSvc)

	escrows := v1.Group("/escrows", jwtAuth)
	{
		escrows.POST("", rl("escrows_write"), escrowHandler.Create)
		escrows.GET("", rl("escrows_read"), escrowHandler.List)
		escrows.GET("/:id", rl("escrows_read"), escrowHandler.Get)
		escrows.POST("/:id/cancel", rl("escrows_write"), escrowHandler.Cancel)

		escrows.POST("/:id/deposit", rl("escrows_write"), depositHandler.ProcessDeposit)
		escrows.GET("/:id/deposits", rl("escrows_read"), depositHandler.ListDeposits)

		escrows.POST("/:id/delivery", rl("escrows_write"), verificationHandler.ConfirmDelivery)
		escrows.POST("/:id/verification", rl("escrows_write"), verificationHandler.VerifyVehicle)
		escrows.POST("/:id/ownership", rl("escrows_write"), verificationHandler.ConfirmOwnershipTransfer)
		escrows.GET("/:id/verifications", rl("escrows_read"), verificationHandler.ListVerifications)

		escrows.POST("/:id/settlement", rl("escrows_write"), settlementHandler.Start)
		escrows.POST("/:id/settlement/complete", rl("escrows_write"), settlementHandler.Complete)
		escrows.POST("/:id/settlement/fail", rl("escrows_write"), adminOnly, settlementHandler.Fail)
		escrows.GET("/:id/settlement", rl("escrows_read"), settlementHandler.Get)

		escrows.POST("/:id/disputes", rl("disputes"), disputeHandler.Raise)
		escrows.GET("/:id/disputes", rl("escrows_read"), disputeHandler.ListByTransaction)

		escrows.GET("/:id/events", rl("escrows_read"), eventHandler.History)
		escrows.GET("/:id/state", rl("escrows_read"), eventHandler.State)
	}

	// --- Dispute administration (admin only) ---
	disputes := v1.Group("/disputes", jwtAuth)
	{
		disputes.GET("", rl("escrows_read"), adminOnly, disputeHandler.ListByStatus)
		disputes.PATCH("/:id/review", rl("disputes"), adminOnly, disputeHandler.StartReview)
		disputes.POST("/:id/resolve", rl("disputes"), adminOnly, disputeHandler.Resolve)
	}

	return r
}
