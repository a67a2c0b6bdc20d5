// Package api exposes the tracker over HTTP: report and payroll endpoints,
// platform export uploads, and a WebSocket event stream.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"arbitrage-shift-tracker/config"
	"arbitrage-shift-tracker/internal/auth"
	"arbitrage-shift-tracker/internal/cache"
	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/events"
	"arbitrage-shift-tracker/internal/ingest"
	"arbitrage-shift-tracker/internal/logging"
	"arbitrage-shift-tracker/internal/reports"
)

// RateLimiter provides simple in-memory rate limiting per endpoint
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// Server represents the HTTP API server
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	repo        *database.Repository
	reports     *reports.Service
	ingest      *ingest.Service
	eventBus    *events.EventBus
	hub         *WSHub
	cache       *cache.Service
	authService *auth.Service
	jwtManager  *auth.JWTManager
	authEnabled bool
	rateLimiter *RateLimiter
	config      config.ServerConfig
	upload      config.UploadConfig
	log         *logging.Logger
}

// NewServer creates the API server and mounts all routes
func NewServer(
	cfg config.ServerConfig,
	uploadCfg config.UploadConfig,
	repo *database.Repository,
	reportSvc *reports.Service,
	ingestSvc *ingest.Service,
	authService *auth.Service,
	jwtManager *auth.JWTManager,
	authEnabled bool,
	cacheSvc *cache.Service,
	eventBus *events.EventBus,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(accessLogMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:      router,
		repo:        repo,
		reports:     reportSvc,
		ingest:      ingestSvc,
		eventBus:    eventBus,
		hub:         NewWSHub(),
		cache:       cacheSvc,
		authService: authService,
		jwtManager:  jwtManager,
		authEnabled: authEnabled,
		rateLimiter: NewRateLimiter(30, time.Minute),
		config:      cfg,
		upload:      uploadCfg,
		log:         logging.WithComponent("api"),
	}

	server.setupRoutes()
	server.bridgeEvents()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	authHandlers := auth.NewHandlers(s.authService)
	authHandlers.RegisterRoutes(s.router.Group("/api/auth"), s.jwtManager)

	api := s.router.Group("/api")
	// Destructive endpoints need an admin token on top of authentication
	adminOnly := func(c *gin.Context) { c.Next() }
	if s.authEnabled {
		api.Use(auth.Middleware(s.jwtManager))
		adminOnly = auth.RequireAdmin()
	}
	{
		api.GET("/employees", s.handleListEmployees)
		api.POST("/employees", s.handleCreateEmployee)
		api.GET("/employees/:id", s.handleGetEmployee)
		api.PUT("/employees/:id", s.handleUpdateEmployee)
		api.DELETE("/employees/:id", adminOnly, s.handleDeleteEmployee)
		api.GET("/employees/:id/scams", s.handleListEmployeeScams)

		api.GET("/accounts", s.handleListAccounts)
		api.POST("/accounts", s.handleCreateAccount)
		api.PUT("/accounts/:id", s.handleUpdateAccount)
		api.DELETE("/accounts/:id", adminOnly, s.handleDeleteAccount)
		api.GET("/accounts/:id/balance-history", s.handleBalanceHistory)

		api.GET("/initial-balances", s.handleListInitialBalances)
		api.PUT("/initial-balances", s.handleReplaceInitialBalances)

		api.GET("/reports", s.handleListReports)
		api.POST("/reports", s.handleCreateReport)
		api.GET("/reports/:id", s.handleGetReport)
		api.PUT("/reports/:id", s.handleUpdateReport)
		api.DELETE("/reports/:id", adminOnly, s.handleDeleteReport)
		api.POST("/reports/:id/link", s.handleLinkReport)

		api.GET("/orders", s.handleListOrders)
		api.POST("/orders", s.handleCreateOrder)
		api.DELETE("/orders/:id", s.handleDeleteOrder)
		api.POST("/orders/upload", s.rateLimitMiddleware("upload"), s.handleUploadOrders)

		api.GET("/dashboard", s.handleDashboard)
		api.GET("/payroll", s.handlePayroll)
		api.GET("/scam-history", s.handleScamHistory)

		api.GET("/salary-settings", s.handleGetSalarySettings)
		api.PUT("/salary-settings", s.handleUpdateSalarySettings)
	}
}

func (s *Server) rateLimitMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimiter.Allow(key + ":" + c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if err := s.repo.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
		return
	}
	if s.cache != nil {
		status["redis"] = s.cache.IsHealthy()
	}
	c.JSON(http.StatusOK, status)
}

// Start runs the HTTP server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.config.WriteTimeout) * time.Second,
	}

	go s.hub.Run()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := time.Duration(s.config.ShutdownTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
