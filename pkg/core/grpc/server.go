// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     grpc
// Description: gRPC server wrapper with interceptors, health and reflection
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/config"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/version"
)

const defaultMessageSize = 4 * 1024 * 1024

// ServerConfig holds gRPC server configuration
type ServerConfig struct {
	Host              string
	Port              int
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	EnableReflection  bool
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// DefaultServerConfig listens on :9090 with reflection on
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "0.0.0.0",
		Port:              9090,
		MaxRecvMsgSize:    defaultMessageSize,
		MaxSendMsgSize:    defaultMessageSize,
		EnableReflection:  true,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// ServerConfigFrom maps the [grpc] config section
func ServerConfigFrom(cfg config.GRPCConfig) ServerConfig {
	sc := DefaultServerConfig()
	sc.Host = cfg.Host
	sc.Port = cfg.Port
	if cfg.MaxMessageSize > 0 {
		sc.MaxRecvMsgSize = cfg.MaxMessageSize
		sc.MaxSendMsgSize = cfg.MaxMessageSize
	}
	return sc
}

// Address returns host:port
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ServerConfig) options(logger *logging.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(c.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(c.MaxSendMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    c.KeepaliveInterval,
			Timeout: c.KeepaliveTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		// Recovery first so panics in the other interceptors are caught too.
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(logger),
			RequestIDInterceptor(),
			LoggingInterceptor(logger),
		),
	}
}

// Server is a grpc.Server with grpc.health.v1 registered
type Server struct {
	server *grpc.Server
	health *grpchealth.Server
	config ServerConfig
	logger *logging.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the server. opts are appended to the defaults.
func NewServer(cfg ServerConfig, opts ...grpc.ServerOption) *Server {
	logger := logging.New("grpc-server")

	server := grpc.NewServer(append(cfg.options(logger), opts...)...)
	healthServer := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	if cfg.EnableReflection {
		reflection.Register(server)
	}

	return &Server{
		server: server,
		health: healthServer,
		config: cfg,
		logger: logger,
	}
}

// GRPCServer returns the underlying server for service registration
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// SetServingStatus reports service as serving or not through grpc.health.v1.
// An empty service name sets the overall status.
func (s *Server) SetServingStatus(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, st)
}

// Serve accepts connections on listener until the server stops
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("Starting gRPC API", "address", listener.Addr().String(), "version", version.GRPC)
	return s.server.Serve(listener)
}

// Start listens on the configured address and serves until the server stops
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return mdwerror.Wrap(err, "failed to listen").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithDetail("address", s.config.Address()).
			WithOperation("grpc.Start")
	}
	return s.Serve(listener)
}

// Stop marks every service not serving and drains in-flight calls
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// StopWithTimeout drains like Stop but closes remaining connections
// when ctx is done
func (s *Server) StopWithTimeout(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("gRPC drain timed out, closing connections")
		s.server.Stop()
	}
}

// Address returns the bound address once serving, else the configured one
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address()
}
