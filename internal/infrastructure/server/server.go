package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/todoflow/core/internal/adapters/http"
	"github.com/todoflow/core/internal/adapters/repository"
	"github.com/todoflow/core/internal/application/services"
	"github.com/todoflow/core/internal/infrastructure/cache"
	"github.com/todoflow/core/internal/infrastructure/config"
	"github.com/todoflow/core/internal/infrastructure/database"
	"github.com/todoflow/core/internal/infrastructure/logger"
	"github.com/todoflow/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    *logger.Logger
	db        *database.DB
	cache     *cache.TodoListCache
	retention *services.RetentionService
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	todoRepo := repository.NewTodoRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)

	// Optional Redis list cache
	var redisCache *cache.TodoListCache
	var listCache ports.ListCache
	if cfg.Redis.Enabled {
		rc, err := cache.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize list cache: %w", err)
		}
		redisCache = rc
		listCache = rc
	}

	// Initialize services
	todoService := services.NewTodoService(todoRepo, listCache, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	retentionService := services.NewRetentionService(todoService, cfg.Retention, appLogger)

	// Initialize handlers
	todoHandler := httpHandlers.NewTodoHandler(todoService, cfg.Retention, appLogger)
	authHandler := httpHandlers.NewAuthHandler(userService, appLogger)

	server := &Server{
		echo:      e,
		config:    cfg,
		logger:    appLogger,
		db:        db,
		cache:     redisCache,
		retention: retentionService,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(todoHandler, authHandler, userService)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(todoHandler *httpHandlers.TodoHandler, authHandler *httpHandlers.AuthHandler, userService *services.UserService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// API documentation
	s.echo.Static("/docs", "docs")

	api := s.echo.Group("/api")

	// Auth callback (public, hit by the identity provider)
	api.POST("/auth/callback", authHandler.Callback)

	// Session-scoped routes
	session := s.sessionMiddleware(userService)

	api.GET("/me", authHandler.Me, session)

	todoGroup := api.Group("/todos", session)
	todoGroup.GET("", todoHandler.List)
	todoGroup.POST("", todoHandler.Create)
	todoGroup.PATCH("/:id", todoHandler.Update)
	todoGroup.DELETE("/:id", todoHandler.Delete)
	todoGroup.POST("/batch/delete-old", todoHandler.DeleteOld)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if s.db != nil {
		if err := s.db.HealthCheck(); err != nil {
			status = "error"
			checks["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "ok",
				"stats":  s.db.GetConnectionInfo(),
			}
		}
	}

	// A broken cache degrades reads but the service keeps working, so
	// it never takes the health endpoint to 503 on its own.
	if s.cache != nil {
		if err := s.cache.Ping(c.Request().Context()); err != nil {
			if status == "ok" {
				status = "degraded"
			}
			checks["cache"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["cache"] = map[string]interface{}{
				"status": "ok",
			}
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "error" {
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server and the retention scheduler
func (s *Server) Start(address string) error {
	if err := s.retention.Start(); err != nil {
		return fmt.Errorf("failed to start retention scheduler: %w", err)
	}

	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	s.retention.Stop()
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as the {error, code} envelope.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		status := http.StatusInternalServerError
		envelope := httpHandlers.APIError{
			Code:    httpHandlers.CodeInternalError,
			Message: "Internal server error",
		}

		var apiErr *httpHandlers.APIError
		var he *echo.HTTPError
		var ve validator.ValidationErrors

		switch {
		case errors.As(err, &apiErr):
			status = apiErr.Status
			envelope = *apiErr
		case errors.As(err, &ve):
			status = http.StatusBadRequest
			envelope = httpHandlers.APIError{
				Code:    httpHandlers.CodeValidationError,
				Message: ve.Error(),
			}
		case errors.As(err, &he):
			status = he.Code
			envelope = httpHandlers.APIError{
				Code:    codeForStatus(he.Code),
				Message: fmt.Sprintf("%v", he.Message),
			}
		}

		if status == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			var sendErr error
			if c.Request().Method == echo.HEAD {
				sendErr = c.NoContent(status)
			} else {
				sendErr = c.JSON(status, envelope)
			}
			if sendErr != nil {
				logger.Errorw("Error sending response", "error", sendErr)
			}
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return httpHandlers.CodeValidationError
	case http.StatusUnauthorized:
		return httpHandlers.CodeUnauthorized
	case http.StatusNotFound:
		return httpHandlers.CodeTodoNotFound
	default:
		return httpHandlers.CodeInternalError
	}
}
