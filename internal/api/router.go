package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gestion-comercial/backoffice/docs"
	"github.com/gestion-comercial/backoffice/internal/api/handler"
	"github.com/gestion-comercial/backoffice/internal/api/middleware"
	"github.com/gestion-comercial/backoffice/internal/api/policy"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/infrastructure/session"
)

// Dependencies is everything the router wires into handlers and middleware.
type Dependencies struct {
	Log         zerolog.Logger
	AuthService ports.AuthService
	Codec       ports.TokenCodec
	Sessions    *session.Store
	APIPolicy   *policy.Enforcer
	WebPolicy   *policy.Enforcer

	// Readiness checks, keyed by dependency name.
	Readiness map[string]handler.Pinger

	CORSAllowedOrigins []string
	SecureCookies      bool

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = echo.ExtractIPDirect()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	metricsMW, metricsHandler, err := httpMetrics(d.Registry)
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(metricsMW)
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		Skipper:          func(c echo.Context) bool { return !middleware.IsAPIPath(c.Request().URL.Path) },
		AllowOrigins:     d.CORSAllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	// --- Identity and route admission ---
	e.Use(middleware.Authenticate(d.Codec, d.Log))
	e.Use(middleware.Session(d.Sessions))
	e.Use(middleware.Admit(d.APIPolicy, d.WebPolicy, d.Log))

	// --- REST surface ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	e.POST("/api/auth/login", authHandler.Login)
	e.GET("/api/auth/me", authHandler.Me)

	// --- Browser surface ---
	webHandler := handler.NewWebHandler(d.AuthService, d.Sessions, d.SecureCookies, d.Log)
	e.GET(middleware.LoginPath, webHandler.LoginPage)
	e.POST(middleware.LoginPath, webHandler.LoginSubmit)
	e.POST("/logout", webHandler.Logout)
	e.GET("/", webHandler.Home)

	// --- Operations ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func httpMetrics(reg *prometheus.Registry) (echo.MiddlewareFunc, echo.HandlerFunc, error) {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace: "backoffice",
		Subsystem: "http",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		DoNotUseRequestPathFor404: true,
	}
	handlerCfg := echoprometheus.HandlerConfig{}
	if reg != nil {
		cfg.Registerer = reg
		handlerCfg.Gatherer = reg
	}

	mw, err := cfg.ToMiddleware()
	if err != nil {
		return nil, nil, fmt.Errorf("http metrics: %w", err)
	}
	return mw, echoprometheus.NewHandlerWithConfig(handlerCfg), nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
