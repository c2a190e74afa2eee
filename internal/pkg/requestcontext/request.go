package requestcontext

import "context"

// ContextKey type for context keys to avoid collisions
type ContextKey string

// RequestIDKey is the context key for the correlation ID of the inbound call
const RequestIDKey ContextKey = "request_id"

// WithRequestID returns ctx carrying id. An empty id leaves ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the ID stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
