// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/identity/internal/config"
	identityHTTP "github.com/allisson/identity/internal/identity/http"
	identityUseCase "github.com/allisson/identity/internal/identity/usecase"
	"github.com/allisson/identity/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck is an extra dependency probed by /ready, such as the Redis ticket store.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
	checks []ReadinessCheck
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	checks ...ReadinessCheck,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		checks: checks,
		server: newHTTPServer(host, port, nil),
	}
}

// newHTTPServer applies the timeouts shared by the API and metrics listeners.
func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs srv until Shutdown, treating http.ErrServerClosed as a clean stop.
func serve(srv *http.Server, name string, logger *slog.Logger) error {
	logger.Info("starting "+name, slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// SetupRouter builds the gin engine with every route. ctx bounds background work started by
// middleware, such as rate limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	identityHandler *identityHTTP.IdentityHandler,
	identityUseCase identityUseCase.IdentityUseCase,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := newCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authMiddleware := identityHTTP.AuthenticationMiddleware(identityUseCase, s.logger)

	credentialRoutes := []gin.HandlerFunc{}
	if cfg.AuthRateLimitEnabled {
		credentialRoutes = append(credentialRoutes, identityHTTP.AuthRateLimitMiddleware(
			ctx,
			cfg.AuthRateLimitRequestsPerSec,
			cfg.AuthRateLimitBurst,
			s.logger,
		))
	}

	v1 := router.Group("/v1/auth")
	{
		// Unauthenticated credential endpoints share the per-IP limiter
		limited := v1.Group("", credentialRoutes...)
		limited.POST("/register", identityHandler.RegisterHandler)
		limited.POST("/login", identityHandler.LoginHandler)
		limited.POST("/password/forgot", identityHandler.ForgotPasswordHandler)
		limited.POST("/password/reset", identityHandler.ResetPasswordHandler)
		limited.POST("/claim", identityHandler.ClaimHandler)
		limited.POST("/claim/verify", identityHandler.VerifyClaimHandler)

		v1.POST("/refresh", identityHandler.RefreshHandler)
		v1.POST("/logout", identityHandler.LogoutHandler)

		authenticated := v1.Group("", authMiddleware)
		authenticated.POST("/password/change", identityHandler.ChangePasswordHandler)
		authenticated.GET("/me", identityHandler.MeHandler)
	}

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler probes the database and every extra readiness check.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", check.Name), slog.Any("error", err))
			components[check.Name] = "error"
			ready = false
			continue
		}
		components[check.Name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter first")
	}
	s.server.Handler = s.router
	return serve(s.server, "http server", s.logger)
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
