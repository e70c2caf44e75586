package httputil

import (
	"context"
)

// Context key type to avoid collisions
type contextKey string

const (
	requestIDKey   contextKey = "requestID"
	bearerTokenKey contextKey = "bearerToken"
)

// WithRequestID attaches a request ID to ctx; outgoing requests carry it as X-Request-ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from ctx, returns empty string if not found
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

// WithBearerToken pins the bearer token for requests made with ctx,
// overriding whatever the transport would attach.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// GetBearerToken retrieves a pinned bearer token from ctx
func GetBearerToken(ctx context.Context) string {
	token, _ := ctx.Value(bearerTokenKey).(string)
	return token
}
