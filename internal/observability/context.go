package observability

import "context"

// correlationIDContextKey is the context key for the request correlation ID.
type correlationIDContextKey struct{}

// WithCorrelationID returns a context carrying the request correlation ID.
// The ID is propagated to upstream calls via the X-Correlation-ID header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, id)
}

// CorrelationIDFromContext extracts the correlation ID, or "" if absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey{}).(string); ok {
		return id
	}
	return ""
}
