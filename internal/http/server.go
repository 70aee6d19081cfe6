// Package http provides the HTTP server, its routes and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/authserver/internal/auth/http"
	"github.com/allisson/authserver/internal/config"
	keysHTTP "github.com/allisson/authserver/internal/keys/http"
	"github.com/allisson/authserver/internal/metrics"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
//
// The login route is mounted at /v1/tenants/:tenant_id/login when multi-tenancy is enabled
// and at /v1/login otherwise. Key and user administration is only mounted when an admin
// token is configured.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	keyHandler *keysHTTP.KeyHandler,
	loginHandler *authHTTP.LoginHandler,
	userHandler *authHTTP.UserHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/.well-known/jwks.json", keyHandler.JWKSHandler)

	v1 := router.Group("/v1")

	loginChain := []gin.HandlerFunc{}
	if cfg.RateLimitLoginEnabled {
		loginChain = append(loginChain, authHTTP.LoginRateLimitMiddleware(
			ctx,
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			s.logger,
		))
	}
	loginChain = append(loginChain, loginHandler.LoginHandler)

	if cfg.MultiTenantEnabled {
		v1.POST("/tenants/:"+authHTTP.TenantIDParam+"/login", loginChain...)
	} else {
		v1.POST("/login", loginChain...)
	}

	if cfg.AdminAPIToken == "" {
		s.logger.Warn("ADMIN_API_TOKEN is empty, key and user administration routes are disabled")
	} else {
		admin := v1.Group("", authHTTP.AdminTokenMiddleware(cfg.AdminAPIToken, s.logger))

		keys := admin.Group("/keys")
		{
			keys.POST("", keyHandler.CreateHandler)
			keys.GET("", keyHandler.ListHandler)
			keys.DELETE("", keyHandler.DeleteOldestHandler)
			keys.DELETE("/:key_id", keyHandler.DeleteHandler)
		}

		users := admin.Group("/users")
		{
			users.POST("", userHandler.CreateHandler)
			users.GET("/:user_id", userHandler.GetHandler)
			users.PUT("/:user_id/password", userHandler.SetPasswordHandler)
			users.GET("/:user_id/audit-events", userHandler.ListAuditEventsHandler)
		}
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
