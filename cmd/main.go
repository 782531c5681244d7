package main

import (
	"dealhub/internal/handler"
	"dealhub/internal/middleware"
	"dealhub/internal/model"
	"dealhub/internal/repository"
	"dealhub/pkg/config"
	"dealhub/pkg/database"
	"dealhub/pkg/jwtutil"
	"dealhub/pkg/logger"
	"dealhub/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting dealhub...", cfg.LogConfig()...)

	// Initialize database
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Tenant{},
		&model.User{},
		&model.Category{},
		&model.Deal{},
		&model.Vote{},
		&model.PointHistory{},
		&model.Share{},
		&model.DealAnalytics{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Optional Redis client for the rate limiter
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("Redis rate limiter enabled", zap.String("addr", cfg.Redis.Addr))
	}

	tenants := repository.NewTenantRepository(database.GetDB(), cfg.Tenant.DefaultSubdomain)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Operational endpoints live outside tenant scope
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.HandlerFunc())

	// Tenant administration is host-independent and admin-gated
	admin := e.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/tenants", handler.CreateTenant)
	admin.GET("/tenants", handler.ListTenants)
	admin.GET("/tenants/:id", handler.GetTenant)
	admin.PATCH("/tenants/:id", handler.UpdateTenant)
	admin.DELETE("/tenants/:id", handler.DeleteTenant)

	// Everything below resolves the owning tenant from the request host
	// first; requests with no tenant never reach a handler.
	tenant := e.Group("", middleware.TenantContext(tenants))

	tenant.GET("/api/tenants/current", handler.CurrentTenant)

	tenant.POST("/auth/register", handler.Register, middleware.RateLimit(cfg.Redis, rdb))
	tenant.POST("/auth/login", handler.Login, middleware.RateLimit(cfg.Redis, rdb))

	// Public engagement surface
	tenant.GET("/api/deals", handler.ListDeals)
	tenant.GET("/api/deals/:slug", handler.GetDeal)
	tenant.GET("/api/deals/:slug/score", handler.DealScore)
	tenant.POST("/api/deals/:slug/click", handler.ClickDeal, middleware.RateLimit(cfg.Redis, rdb))
	tenant.GET("/api/leaderboard", handler.GetLeaderboard)
	tenant.GET("/s/:code", handler.ResolveShortLink, middleware.RateLimit(cfg.Redis, rdb))
	tenant.POST("/api/shares", handler.CreateShare, middleware.OptionalAuth, middleware.RateLimit(cfg.Redis, rdb))

	// Authenticated surface
	api := tenant.Group("/api", middleware.AuthMiddleware)
	api.POST("/deals", handler.CreateDeal)
	api.POST("/deals/:slug/vote", handler.VoteDeal)
	api.GET("/deals/:slug/shares", handler.ShareAnalytics)
	api.GET("/user/points", handler.GetMyPoints)
	api.POST("/user/points/spend", handler.SpendPoints)

	// Tenant-scoped moderation
	mod := tenant.Group("/api/admin", middleware.AuthMiddleware,
		middleware.RequireRole(model.RoleAdmin, model.RoleModerator))
	mod.POST("/deals/approve", handler.ApproveDeal)
	mod.GET("/analytics", handler.AdminAnalytics)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
