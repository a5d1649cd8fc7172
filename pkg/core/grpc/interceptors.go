// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     grpc
// Description: Unary interceptors for recovery, logging and request ids
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

type contextKey string

const (
	// RequestIDKey holds the request id in a server or client context
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader carries the request id in gRPC metadata
	RequestIDHeader = "x-request-id"
)

// RecoveryInterceptor turns a handler panic into codes.Internal. The
// request id is part of the status message so a client can report it.
func RecoveryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestID := GetRequestID(ctx)
			logger.WithRequestID(requestID).Error("Calculator handler panicked",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal error (request %s)", requestID)
		}()
		return handler(ctx, req)
	}
}

// RequestIDInterceptor stores the caller's x-request-id, or a fresh uuid,
// in the context and echoes it as a response header
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := incomingRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs one line per call. Rejected input is logged at
// info, server faults at error.
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger.WithRequestID(GetRequestID(ctx)), "gRPC request", info.FullMethod, start, err, false)
		return resp, err
	}
}

// ClientRequestIDInterceptor sends the context's request id, or a fresh
// uuid, as x-request-id
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ClientLoggingInterceptor logs outgoing calls at debug level
func ClientLoggingInterceptor(logger *logging.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		logCall(logger.WithRequestID(GetRequestID(ctx)), "gRPC client request", method, start, err, true)
		return err
	}
}

func logCall(logger *logging.Logger, msg, method string, start time.Time, err error, client bool) {
	code := status.Code(err)
	kv := []interface{}{
		"method", method,
		"status", code.String(),
		"duration_ms", float64(time.Since(start).Microseconds()) / 1000,
	}
	switch {
	case client:
		logger.Debug(msg, kv...)
	case serverFault(code):
		logger.Error(msg, append(kv, "error", err)...)
	default:
		logger.Info(msg, kv...)
	}
}

func serverFault(code codes.Code) bool {
	switch code {
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		return true
	default:
		return false
	}
}

// GetRequestID returns the request id stored by WithRequestID or, on a
// server, the one the caller sent
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return incomingRequestID(ctx)
}

func incomingRequestID(ctx context.Context) string {
	if values := metadata.ValueFromIncomingContext(ctx, RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}

// WithRequestID returns ctx carrying requestID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
