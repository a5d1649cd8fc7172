// Package server runs the HTTP API of the LC calculator.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/server/handler"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/config"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/health"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/version"
)

// Server is the calculator HTTP server
type Server struct {
	httpServer *http.Server
	handler    *handler.Handler
	health     *health.Registry
	logger     *logging.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host            string
	HTTPPort        int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Version         string
	Defaults        calc.Defaults
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Version:         version.HTTP,
		Defaults:        calc.Defaults{ImpedanceUnit: "Ω", ReactanceUnit: "Ω", FrequencyUnit: "Hz"},
	}
}

// ConfigFrom maps the application config onto a server config
func ConfigFrom(cfg *config.Config) (Config, error) {
	defaults, err := calc.DefaultsFrom(cfg.Defaults)
	if err != nil {
		return Config{}, err
	}
	sc := DefaultConfig()
	sc.Host = cfg.HTTP.Host
	sc.HTTPPort = cfg.HTTP.Port
	sc.ReadTimeout = cfg.HTTP.ReadTimeout.Duration
	sc.WriteTimeout = cfg.HTTP.WriteTimeout.Duration
	sc.ShutdownTimeout = cfg.HTTP.ShutdownTimeout.Duration
	sc.Defaults = defaults
	return sc, nil
}

// New creates a new HTTP server over orchestrator
func New(cfg Config, orchestrator *calc.Orchestrator) *Server {
	logger := logging.New("http-server")

	healthRegistry := health.NewRegistry("lcc-http", cfg.Version)
	healthRegistry.Register(health.AlwaysHealthy("http"))
	healthRegistry.Register(health.ProbeCheck("engine", orchestrator.SelfTest))
	if _, ok := orchestrator.CacheStats(); ok {
		healthRegistry.Register(health.StatsCheck("cache", func() map[string]interface{} {
			stats, _ := orchestrator.CacheStats()
			return map[string]interface{}{
				"size":     stats.Size,
				"hits":     stats.Hits,
				"misses":   stats.Misses,
				"hit_rate": stats.HitRate,
			}
		}))
	}

	h := handler.NewHandler(cfg.Version, orchestrator, cfg.Defaults, healthRegistry, logging.New("http-handler"))
	wsHandler := handler.NewWebSocketHandler(h)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/ws", wsHandler)
	mux.Handle("/api/", h)
	mux.Handle("/api/v1/", h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    h,
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
	}
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"request_id", w.Header().Get(handler.RequestIDHeader),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade reach the underlying connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Handler returns the root HTTP handler including middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP API",
		"host", s.config.Host,
		"port", s.config.HTTPPort,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Serve accepts connections on listener until the server stops
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("Starting HTTP API", "address", listener.Addr().String())
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the server. Without a deadline on ctx the
// configured shutdown timeout applies.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP API")
	if _, ok := ctx.Deadline(); !ok && s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
