package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/acquisitions/acquisitions-api/docs"
	"github.com/acquisitions/acquisitions-api/internal/api/handler"
	"github.com/acquisitions/acquisitions-api/internal/api/middleware"
	"github.com/acquisitions/acquisitions-api/internal/api/session"
	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

const bodyLimit = "1M"

// Dependencies is everything the router needs, constructed once at startup.
type Dependencies struct {
	Log zerolog.Logger

	AuthService ports.AuthService
	UserService ports.UserService
	Admission   ports.AdmissionService
	Tokens      middleware.TokenVerifier
	Cookies     *session.Cookies

	// Checks are the readiness probes, keyed by dependency name.
	Checks  map[string]handler.Check
	Started time.Time

	TrustProxy   bool
	CORSOrigins  []string
	EnforceAuthz bool

	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil means
	// the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	if deps.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(corsConfig(deps.CORSOrigins)))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(middleware.RequestLogger(deps.Log, nil))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "acquisitions",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Identify(deps.Tokens))
	e.Use(middleware.Admission(deps.Admission, middleware.AdmissionConfig{
		Skipper: middleware.OperationalSkipper,
	}))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler(deps.Started)
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Cookies, deps.Log)
	userHandler := handler.NewUserHandler(deps.UserService)

	e.GET("/", healthHandler.Root)
	e.GET("/api", healthHandler.API)

	// --- Health probes (no auth, no admission) ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/signout", authHandler.SignOut)

	// --- User routes ---
	var authn, adminOnly []echo.MiddlewareFunc
	if deps.EnforceAuthz {
		authn = []echo.MiddlewareFunc{middleware.RequireAuth()}
		adminOnly = []echo.MiddlewareFunc{middleware.RequireAuth(), middleware.RBAC(domain.RoleAdmin)}
	}
	users := e.Group("/api/users")
	users.GET("", userHandler.List, authn...)
	users.GET("/:id", userHandler.Get, authn...)
	users.PUT("/:id", userHandler.Update, authn...)
	users.DELETE("/:id", userHandler.Delete, adminOnly...)

	// --- Operational ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.Gatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func corsConfig(origins []string) echomiddleware.CORSConfig {
	cfg := echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}
	if len(origins) > 0 && !(len(origins) == 1 && strings.TrimSpace(origins[0]) == "*") {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
