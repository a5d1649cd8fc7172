package calc

import "context"

type contextKey struct{}

// WithRequestID returns a context carrying the request id Calculate logs
// and reports. Without one a fresh uuid is generated per call.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// RequestIDFrom returns the request id stored by WithRequestID
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
