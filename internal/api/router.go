package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/user-admin/docs"
	"github.com/99minutos/user-admin/internal/api/handler"
	"github.com/99minutos/user-admin/internal/api/middleware"
	"github.com/99minutos/user-admin/internal/api/views"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer is assembled from.
type Deps struct {
	Users   ports.UserService
	Roles   ports.RoleService
	Auth    ports.AuthService
	Revoker ports.TokenRevoker // optional

	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool

	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handlers.Pinger
	// Registry receives the HTTP metrics; the default registry is used when nil.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "useradmin",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authMiddleware := middleware.Auth(d.JWTSecret, d.Revoker, d.Users)
	csrf := echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.SecureCookies,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper:        skipCSRF,
	})

	authHandler := handler.NewAuthHandler(d.Auth, d.Users, d.TokenTTL, d.SecureCookies)
	adminHandler := handler.NewAdminHandler(d.Users, d.Roles)

	// --- Auth routes ---
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/login") })
	e.GET("/login", authHandler.LoginForm, csrf)
	e.POST("/login", authHandler.Login, csrf)
	e.POST("/logout", authHandler.Logout, authMiddleware, csrf)
	e.GET("/user", authHandler.Profile, authMiddleware, csrf)

	// --- Admin routes ---
	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin), csrf)
	admin.GET("", adminHandler.List)
	admin.GET("/add", adminHandler.AddForm)
	admin.POST("/add", adminHandler.Add)
	admin.GET("/edit/:id", adminHandler.EditForm)
	admin.POST("/edit", adminHandler.Edit)
	admin.POST("/delete/:id", adminHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// skipCSRF exempts API clients, i.e. bearer-token requests and JSON bodies.
func skipCSRF(c echo.Context) bool {
	req := c.Request()
	return req.Header.Get(echo.HeaderAuthorization) != "" ||
		strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
