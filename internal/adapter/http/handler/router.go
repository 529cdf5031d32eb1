package handler

import (
	"zenfi-wallet/internal/adapter/http/middleware"
	redisStore "zenfi-wallet/internal/adapter/storage/redis"
	"zenfi-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	ClaimSvc       ports.ClaimService
	PaymentSvc     ports.PaymentService
	WithdrawalSvc  ports.WithdrawalService
	NotifSvc       ports.NotificationService
	MessageSvc     ports.MessageService
	AdminSvc       ports.AdminService
	UploadSvc      ports.UploadService
	ProfileRepo    ports.ProfileRepository
	TokenSvc       ports.TokenService
	Feed           FeedSubscriber             // nil = SSE stream disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
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

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

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

	// Signed upload target (auth is the URL signature itself)
	uploadHandler := NewUploadHandler(deps.UploadSvc)
	r.PUT("/uploads/*path", rl("uploads"), uploadHandler.Receive)

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

	walletHandler := NewWalletHandler(deps.ProfileRepo, deps.ClaimSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", walletHandler.GetWallet)
		wallet.POST("/claim", rl("claim"), walletHandler.Claim)
	}

	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.GET("", paymentHandler.List)
		payments.GET("/latest", paymentHandler.Latest)
		payments.POST("", rl("payments"), paymentHandler.Submit)
		payments.POST("/:id/ack", paymentHandler.Acknowledge)
	}

	uploads := v1.Group("/uploads", jwtAuth)
	{
		uploads.POST("/sign", rl("uploads"), uploadHandler.Sign)
	}

	inboxHandler := NewInboxHandler(deps.NotifSvc, deps.MessageSvc)
	v1.GET("/notifications", jwtAuth, inboxHandler.ListNotifications)
	v1.POST("/notifications/:id/read", jwtAuth, inboxHandler.MarkNotificationRead)
	v1.GET("/messages", jwtAuth, inboxHandler.ListMessages)

	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)
	withdrawals := v1.Group("/withdrawals", jwtAuth)
	{
		withdrawals.POST("", rl("withdrawals"), withdrawalHandler.Create)
		withdrawals.GET("", withdrawalHandler.List)
	}

	// --- SSE change feed ---
	if deps.Feed != nil {
		streamHandler := NewStreamHandler(deps.Feed, deps.Logger)
		v1.GET("/stream", jwtAuth, streamHandler.Stream)
	}

	// --- Admin console (JWT + admin role) ---
	adminHandler := NewAdminHandler(deps.AdminSvc, deps.PaymentSvc, deps.NotifSvc, deps.MessageSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.AdminOnly(), rl("admin"))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/ban", adminHandler.Ban)
		admin.POST("/users/:id/unban", adminHandler.Unban)
		admin.GET("/payments", adminHandler.ListPayments)
		admin.POST("/payments/:id/review", adminHandler.ReviewPayment)
		admin.POST("/notifications", adminHandler.SendNotification)
		admin.POST("/messages", adminHandler.PostMessage)
		admin.POST("/adjustments", adminHandler.Adjust)
	}

	return r
}
