package handler

import (
	"wallet-service/internal/adapter/http/middleware"
	redisStore "wallet-service/internal/adapter/storage/redis"
	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	APIKeySvc      ports.APIKeyService
	Reconciler     ports.WebhookReconciler
	SigVerifier    ports.SignatureVerifier
	IdentityProv   ports.IdentityProvider
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule
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
	r.Use(metrics.HTTPMiddleware())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Deep health check, verifies PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := deps.RateLimitRules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// Per-permission authentication middleware. "" validates the
	// credential without requiring any API key permission.
	authRead := middleware.Authenticate(deps.AuthSvc, domain.PermissionRead, deps.Logger)
	authDeposit := middleware.Authenticate(deps.AuthSvc, domain.PermissionDeposit, deps.Logger)
	authTransfer := middleware.Authenticate(deps.AuthSvc, domain.PermissionTransfer, deps.Logger)
	authAny := middleware.Authenticate(deps.AuthSvc, "", deps.Logger)

	authHandler := NewAuthHandler(deps.AuthSvc, deps.LedgerSvc, deps.IdentityProv, deps.Logger)
	walletHandler := NewWalletHandler(deps.LedgerSvc)
	keyHandler := NewAPIKeyHandler(deps.APIKeySvc)
	webhookHandler := NewWebhookHandler(deps.SigVerifier, deps.Reconciler, deps.Logger)

	// Gateway notifications authenticate by signature, not credential.
	r.POST("/webhooks/paystack", webhookHandler.HandleEvent)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	google := v1.Group("/auth/google")
	{
		google.GET("", authHandler.GoogleLogin)
		google.GET("/callback", authHandler.GoogleCallback)
	}

	// --- Account (session only) ---
	users := v1.Group("/users/me", authAny, middleware.SessionOnly())
	{
		users.GET("", authHandler.Me)
		users.DELETE("", authHandler.DeleteMe)
	}

	// --- Wallet & ledger (session or API key) ---
	v1.GET("/wallet", authRead, walletHandler.GetWallet)

	deposits := v1.Group("/deposits")
	{
		deposits.POST("", authDeposit, rl("deposits"), walletHandler.InitiateDeposit)
		deposits.GET("/:reference", authRead, walletHandler.GetDepositStatus)
	}

	v1.POST("/transfers", authTransfer, rl("transfers"), walletHandler.Transfer)
	v1.GET("/transactions", authRead, walletHandler.ListTransactions)

	// --- API key management (session only; keys cannot mint keys) ---
	keys := v1.Group("/keys", authAny, middleware.SessionOnly())
	{
		keys.POST("", keyHandler.Create)
		keys.GET("", keyHandler.List)
		keys.POST("/:id/rollover", keyHandler.Rollover)
		keys.DELETE("/:id", keyHandler.Revoke)
	}

	return r
}
