package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/tokobaju/storefront/docs"
	"github.com/tokobaju/storefront/internal/api/cookie"
	"github.com/tokobaju/storefront/internal/api/handler"
	"github.com/tokobaju/storefront/internal/api/middleware"
	"github.com/tokobaju/storefront/internal/core/domain"
	"github.com/tokobaju/storefront/internal/core/ports"
)

// Dependencies are the collaborators the router mounts. Mongo and Redis are
// only used by the readiness probe and may be nil.
type Dependencies struct {
	Auth     ports.AuthService
	Access   ports.AccessControl
	Products ports.ProductService
	Cookies  *cookie.Codec
	// LoginPath is where anonymous browsers are redirected. The login page
	// is served by the storefront UI, not this API.
	LoginPath string

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives HTTP metrics. Defaults to the global prometheus registry.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(prometheusMiddleware(deps.Registry))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies, deps.LoginPath)
	dashboardHandler := handler.NewDashboardHandler(deps.Auth, deps.Products)
	productHandler := handler.NewProductHandler(deps.Products)
	authenticated := middleware.RequireAuthenticated(deps.Access, deps.Cookies, deps.LoginPath)
	adminOnly := middleware.RequireRole(deps.Access, deps.Cookies, domain.RoleAdmin, deps.LoginPath)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/register/:role", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/logout", authHandler.Logout)
	auth.POST("/logout-all", authHandler.LogoutAll, authenticated)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Dashboards ---
	e.GET("/dashboard", dashboardHandler.User, authenticated)
	admin := e.Group("/admin", adminOnly)
	admin.GET("/dashboard", dashboardHandler.Admin)
	admin.POST("/users", authHandler.Provision)

	// --- Catalog ---
	products := e.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, authenticated)
	products.PUT("/:id", productHandler.Update, authenticated)
	products.DELETE("/:id", productHandler.Delete, authenticated)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "storefront",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
