package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/campusshelf/library-system/internal/api/handler"
	"github.com/campusshelf/library-system/internal/api/middleware"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Catalog       ports.CatalogService
	Circulation   ports.CirculationService
	Users         ports.UserService
	Auth          ports.AuthService
	Notifications ports.NotificationService
	Fines         ports.FineService

	Store     ports.Store
	Blocklist ports.TokenBlocklist
	// Redis is only used by the readiness probe; nil when redis is disabled.
	Redis *redis.Client

	JWTSecret string
	Logger    zerolog.Logger

	// Registerer and Gatherer default to the global prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "library",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Store, d.Redis).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authMiddleware := middleware.Auth(d.JWTSecret, d.Blocklist, d.Store.Users(), d.Logger)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.POST("/auth/password/forgot", authHandler.ForgotPassword)
	e.POST("/auth/password/reset", authHandler.ResetPassword)

	v1 := e.Group("/v1", authMiddleware)

	// --- Catalog ---
	catalog := handler.NewCatalogHandler(d.Catalog)
	v1.GET("/books", catalog.ListBooks)
	v1.POST("/books", catalog.AddBook, middleware.Allow(policy.ManageBooks))
	v1.PATCH("/books/:id/quantity", catalog.ResizeQuantity, middleware.Allow(policy.ManageBooks))
	v1.GET("/genres", catalog.ListGenres)
	v1.POST("/genres", catalog.AddGenre, middleware.Allow(policy.ManageGenres))
	v1.PUT("/genres/:id", catalog.UpdateGenre, middleware.Allow(policy.ManageGenres))
	v1.DELETE("/genres/:id", catalog.DeleteGenre, middleware.Allow(policy.ManageGenres))

	// --- Circulation ---
	// Creating a request is not gated here: guests get a domain error from
	// the service rather than a bare 403.
	circulation := handler.NewCirculationHandler(d.Circulation)
	v1.GET("/borrow-requests", circulation.ListRequests)
	v1.POST("/borrow-requests", circulation.CreateRequest)
	v1.POST("/borrow-requests/:id/review", circulation.ReviewRequest, middleware.Allow(policy.ApproveRequests))
	v1.GET("/loans", circulation.ListActiveLoans, middleware.Allow(policy.ProcessReturns))
	v1.GET("/loans/mine", circulation.ListMyLoans, middleware.Allow(policy.ViewOwnLoans))
	v1.POST("/loans/:id/return", circulation.ReturnLoan, middleware.Allow(policy.ProcessReturns))

	// --- Users ---
	users := handler.NewUserHandler(d.Users)
	v1.GET("/users", users.ListUsers, middleware.Allow(policy.ManageUsers))
	v1.POST("/users", users.CreateUser, middleware.Allow(policy.ManageUsers))
	v1.PATCH("/users/:id", users.UpdateProfile)
	v1.PUT("/users/:id/status", users.SetStatus, middleware.Allow(policy.ManageUsers))

	// --- Notifications ---
	notifications := handler.NewNotificationHandler(d.Notifications)
	notes := v1.Group("/notifications", middleware.Allow(policy.ViewNotifications))
	notes.GET("", notifications.List)
	notes.POST("/read-all", notifications.MarkAllRead)
	notes.POST("/:id/read", notifications.MarkRead)

	// --- Fines ---
	fines := handler.NewFineHandler(d.Fines)
	v1.GET("/fines", fines.Summary, middleware.Allow(policy.PayFines))
	v1.POST("/fines/pay", fines.Pay, middleware.Allow(policy.PayFines))

	return e
}

// requestLogger emits one structured zerolog line per request.
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
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
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
