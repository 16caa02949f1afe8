package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/api/handler"
	"github.com/martijn/clientbook/internal/api/middleware"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/pkg/config"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// TracerName is the instrumentation scope of request spans
const TracerName = "github.com/martijn/clientbook/internal/api"

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, clientService *service.ClientService, logger *slog.Logger) *Server {
	// Set Gin mode
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = false

	// Global middleware
	if cfg.Tracing {
		router.Use(otelgin.Middleware(TracerName))
	}
	router.Use(middleware.RequestLogger(logger))
	set := metrics.NewSet()
	if cfg.Metrics {
		router.Use(middleware.MeterRequests(set))
	}
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Registered after the global middleware so it gets CORS and error handling
	if cfg.Metrics {
		router.GET("/metrics", func(c *gin.Context) {
			set.WritePrometheus(c.Writer)
			metrics.WriteProcessMetrics(c.Writer)
		})
	}

	router.NoRoute(middleware.NotFoundHandler)

	// Initialize handlers
	clientHandler := handler.NewClientHandler(clientService, cfg.APIPrefix)

	// Clients
	clients := router.Group(cfg.APIPrefix)
	{
		clients.GET("", clientHandler.ListClients)
		clients.POST("", clientHandler.CreateClient)
		clients.GET("/autocomplete", clientHandler.Autocomplete)
		clients.GET("/:id", clientHandler.GetClient)
		clients.PATCH("/:id", clientHandler.UpdateClient)
		clients.DELETE("/:id", clientHandler.DeleteClient)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := s.config.Addr()

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	s.logger.Info("starting HTTP server", slog.String("addr", addr), slog.String("prefix", s.config.APIPrefix))
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
