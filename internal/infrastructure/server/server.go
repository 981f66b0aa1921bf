package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rtpipe/internal/api/middleware"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/config"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/rtpipe/internal/pipeline"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 5 * time.Second

// HealthReporter supplies the health snapshot served on /health.
type HealthReporter interface {
	Health() pipeline.Health
}

// Server wraps the status HTTP server and its dependencies
type Server struct {
	router   *gin.Engine
	health   HealthReporter
	logger   *logging.Logger
	config   *config.Config
	listener net.Listener
}

// New creates the status server. gatherer backs /metrics.
func New(cfg *config.Config, health HealthReporter, gatherer prometheus.Gatherer, logger *logging.Logger, metrics *monitoring.Metrics) *Server {
	logger = logger.Named("status")

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.Middleware(logger))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		router: router,
		health: health,
		logger: logger,
		config: cfg,
	}

	router.GET("/", s.root)
	router.GET("/health", s.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("Starting status server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down status server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down status server: %w", err)
	}
	return nil
}

// root handles the service banner
func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"service":   "rtpipe",
		"tag":       s.logger.Tag(),
		"endpoints": []string{"/health", "/metrics"},
	})
}

// healthz serves the pipeline health snapshot. A failed supervision window
// answers 503 so external probes can act on it.
func (s *Server) healthz(c *gin.Context) {
	h := s.health.Health()

	body, err := sonic.Marshal(h)
	if err != nil {
		s.logger.Error("Failed to encode health", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode health"})
		return
	}

	status := http.StatusOK
	if !h.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.Data(status, "application/json; charset=utf-8", body)
}
