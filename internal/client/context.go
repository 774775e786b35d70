package client

import "context"

// Common context keys - use a struct to prevent conflicts
type contextKey struct {
	name string
}

var requestIDKey = contextKey{"request-id"}

// ContextWithRequestID stores a request id that Call forwards to the backend in the X-Request-ID header
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func ContextRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok && requestID != ""
}
