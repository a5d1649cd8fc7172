// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     grpc
// Description: Client connection helpers
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

// ClientConfig holds gRPC client configuration
type ClientConfig struct {
	Target         string
	MaxRecvMsgSize int
	MaxSendMsgSize int
	// CallTimeout bounds calls whose context has no deadline. Zero
	// leaves them unbounded.
	CallTimeout       time.Duration
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// DefaultClientConfig returns the client settings matching DefaultServerConfig
func DefaultClientConfig(target string) ClientConfig {
	return ClientConfig{
		Target:            target,
		MaxRecvMsgSize:    defaultMessageSize,
		MaxSendMsgSize:    defaultMessageSize,
		CallTimeout:       30 * time.Second,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Dial creates a plaintext client connection. The connection is lazy; the
// first call establishes it.
func Dial(cfg ClientConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	logger := logging.New("grpc-client")

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxSendMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithChainUnaryInterceptor(
			callTimeoutInterceptor(cfg.CallTimeout),
			ClientRequestIDInterceptor(),
			ClientLoggingInterceptor(logger),
		),
	}

	conn, err := grpc.NewClient(cfg.Target, append(dialOpts, opts...)...)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to dial").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithDetail("target", cfg.Target).
			WithOperation("grpc.Dial")
	}
	return conn, nil
}

func callTimeoutInterceptor(timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if _, ok := ctx.Deadline(); !ok && timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
