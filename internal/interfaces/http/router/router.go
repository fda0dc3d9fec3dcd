package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storecore/backend/internal/infrastructure/auth"
	"github.com/storecore/backend/internal/infrastructure/config"
	"github.com/storecore/backend/internal/infrastructure/logger"
	"github.com/storecore/backend/internal/interfaces/http/handler"
	"github.com/storecore/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Dependencies carries everything the HTTP surface needs
type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist

	System    *handler.SystemHandler
	Catalog   *handler.CatalogHandler
	Inventory *handler.InventoryHandler
	Orders    *handler.OrderHandler
	POS       *handler.POSHandler
	Returns   *handler.ReturnHandler
	Shipments *handler.ShipmentHandler
	Payments  *handler.PaymentHandler
}

// New builds the gin engine with the full middleware stack and all
// routes registered
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	// Liveness sits at the engine root, before auth.
	engine.GET("/health", deps.System.Health)

	api := engine.Group("/api/v1")

	// The provider webhook authenticates with an HMAC signature, not JWT.
	api.POST("/payments/webhook",
		middleware.WebhookAuth(cfg.Payment.WebhookSecret, deps.Logger),
		deps.Payments.Webhook,
	)

	// ping/info carry no store data and stay reachable without a token.
	deps.System.RegisterRoutes(api)

	jwtCfg := middleware.DefaultJWTConfig(deps.JWTService)
	jwtCfg.TokenBlacklist = deps.TokenBlacklist
	jwtCfg.Logger = deps.Logger
	api.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	registrars := []RouteRegistrar{
		deps.Catalog,
		deps.Inventory,
		deps.Orders,
		deps.POS,
		deps.Returns,
		deps.Shipments,
		deps.Payments,
	}
	for _, registrar := range registrars {
		registrar.RegisterRoutes(api)
	}

	return engine
}
