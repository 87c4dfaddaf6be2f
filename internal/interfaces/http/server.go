// Package http exposes the pipeline and confirmation services over gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/infrastructure/export"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Exporter renders resolved rows into a downloadable document
type Exporter interface {
	Write(w io.Writer, formType string, rows []export.Row) error
}

// RequestObserver records per-request metrics
type RequestObserver interface {
	ObserveHTTP(method, route, status string, elapsed time.Duration)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Version         string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Version:         "dev",
	}
}

// Server serves the portal API
type Server struct {
	config   ServerConfig
	router   *gin.Engine
	handlers *Handlers
	logger   Logger

	observer       RequestObserver
	metricsPath    string
	metricsHandler http.Handler
}

// Option configures optional server features
type Option func(*Server)

// WithMetrics serves handler at path and records request metrics
func WithMetrics(observer RequestObserver, path string, handler http.Handler) Option {
	return func(s *Server) {
		s.observer = observer
		s.metricsPath = path
		s.metricsHandler = handler
	}
}

// NewServer builds the router over the given services
func NewServer(
	config ServerConfig,
	pipelines service.PipelineService,
	confirmations service.ConfirmationService,
	exporter Exporter,
	logger Logger,
	opts ...Option,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(pipelines, confirmations, exporter, config.Version, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(gin.Recovery(), requestID(), accessLog(s.logger, s.observer))
	s.routes()
	return s
}

// requestID reuses an incoming X-Request-ID or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLog logs every request and feeds request metrics by route template
func accessLog(logger Logger, observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger.Info("HTTP request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)

		if observer != nil {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			observer.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), latency)
		}
	}
}

func (s *Server) routes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)
	if s.metricsHandler != nil {
		s.router.GET(s.metricsPath, gin.WrapH(s.metricsHandler))
	}

	api := s.router.Group("/api")
	api.GET("/schemas", h.ListSchemas)
	api.GET("/schemas/:formType", h.GetSchema)

	forms := api.Group("/forms/:formType")
	forms.GET("/submissions", h.ListSubmissions)
	forms.POST("/submissions", h.ImportSubmissions)
	forms.GET("/submissions/:id", h.GetSubmission)
	forms.GET("/summary", h.Summary)
	forms.GET("/export", h.Export)

	incidents := api.Group("/it-incidents/:id")
	incidents.GET("/confirmation", h.GetConfirmation)
	incidents.POST("/confirm", h.Confirm)
	incidents.POST("/reject", h.Reject)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", srv.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error("HTTP server error", "error", err)
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the gin engine for in-process requests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the listen address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
