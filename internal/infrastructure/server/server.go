package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	bridge "github.com/GriffinCanCode/trussfs/internal/api/http"
	"github.com/GriffinCanCode/trussfs/internal/api/middleware"
	"github.com/GriffinCanCode/trussfs/internal/api/ws"
	"github.com/GriffinCanCode/trussfs/internal/domain/session"
	"github.com/GriffinCanCode/trussfs/internal/domain/vfs"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/trussfs/internal/infrastructure/tracing"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP bridge and its dependencies
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance. A nil logger is built from cfg.
func NewServer(cfg *config.Config, logger *logging.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		var err error
		if logger, err = logging.FromConfig(cfg.Logging); err != nil {
			logger.Warn("invalid logging configuration, using defaults", zap.Error(err))
		}
	}

	logger.Info("Initializing trussfs bridge",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("version", vfs.Version()),
	)

	var (
		metrics  *monitoring.Metrics
		registry *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = monitoring.NewMetrics(registry)
	}

	tracer := tracing.New("bridge", logger.Logger)
	sessions := session.NewManager(cfg, logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.Server)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	bridge.NewHandlers(sessions, metrics).Register(router)

	stream := ws.NewHandler(sessions, metrics, logger, cfg.Server.AllowedOrigins)
	router.GET("/contexts/:id/watchers/:handle/stream", stream.Stream)

	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		sessions: sessions,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}
}

// Handler returns the bridge router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Run serves on the configured address until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then drains in-flight
// requests and closes every session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.sessions.Start(ctx)
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	s.Close()
	return err
}

// Close releases every session and flushes logs. It does not stop a
// running listener; cancel the context passed to Run for that.
func (s *Server) Close() {
	if err := s.sessions.Shutdown(); err != nil {
		s.logger.Warn("sessions released with errors", zap.Error(err))
	}
	s.tracer.Close()
	_ = s.logger.Sync()
}
