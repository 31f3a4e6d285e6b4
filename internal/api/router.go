package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cervak/pricesurvey-api/internal/api/handler"
	"github.com/cervak/pricesurvey-api/internal/api/middleware"
	"github.com/cervak/pricesurvey-api/internal/api/policy"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
	"github.com/cervak/pricesurvey-api/internal/core/service"
	"github.com/cervak/pricesurvey-api/internal/infrastructure/config"
	mongodb "github.com/cervak/pricesurvey-api/internal/infrastructure/db/mongo"
	redisdb "github.com/cervak/pricesurvey-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pricesurvey"))
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Dependencies ---
	repos := ports.ActorRepositories{
		Admins:     mongodb.NewAdministratorRepository(db),
		Users:      mongodb.NewUserRepository(db),
		Operatives: mongodb.NewOperativeUserRepository(db),
	}
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	issuer := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := service.NewAuthService(repos, hasher, issuer, log)
	actorService := service.NewActorService(repos)

	var throttle handler.LoginThrottle
	if rdb != nil {
		throttle = redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)
	}

	authHandler := handler.NewAuthHandler(authService, throttle)
	opHandler := handler.NewOperativeUserHandler(authService, actorService)
	guard := middleware.Auth(issuer, repos)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout, guard, middleware.RBAC(policy.OpLogout))
	e.POST("/auth/register/admin", authHandler.RegisterAdmin, guard, middleware.RBAC(policy.OpRegisterAdmin))

	// --- Operative user management (admin console) ---
	ops := e.Group("/operative-users", guard)
	ops.POST("", opHandler.Create, middleware.RBAC(policy.OpCreateOperativeUser))
	ops.GET("", opHandler.List, middleware.RBAC(policy.OpListOperativeUsers))
	ops.GET("/:id", opHandler.Get, middleware.RBAC(policy.OpGetOperativeUser))
	ops.PUT("/:id", opHandler.Update, middleware.RBAC(policy.OpUpdateOperativeUser))
	ops.PATCH("/:id/status", opHandler.ToggleStatus, middleware.RBAC(policy.OpToggleOperativeUser))
	ops.DELETE("/:id", opHandler.Delete, middleware.RBAC(policy.OpDeleteOperativeUser))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
