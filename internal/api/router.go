package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/arnauze/Noosify/internal/api/handler"
	"github.com/arnauze/Noosify/internal/api/middleware"
	"github.com/arnauze/Noosify/internal/api/view"
	"github.com/arnauze/Noosify/internal/core/ports"
	"github.com/arnauze/Noosify/internal/core/service"
	"github.com/arnauze/Noosify/internal/session"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb is nil unless the Redis session store is configured.
func NewRouter(backend ports.BackendClient, sessions session.Store, backendURL string, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := view.New()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("noosify"))

	// --- Dependencies ---
	uploads := service.NewUploadService(backend)
	authHandler := handler.NewAuthHandler(backend, sessions)
	dashboardHandler := handler.NewDashboardHandler(backend, uploads)
	gate := middleware.AuthGate(sessions)

	// --- Anonymous entry points ---
	e.GET("/", authHandler.LoginPage)
	e.POST("/", authHandler.Login)
	e.GET("/register", authHandler.RegisterPage)
	e.POST("/register", authHandler.Register)
	e.GET("/logout", authHandler.Logout)

	// --- Protected views (every entry re-runs the gate) ---
	dashboard := e.Group("/dashboard", gate)
	dashboard.GET("", dashboardHandler.View)
	dashboard.POST("", dashboardHandler.Upload)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(backendURL, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
