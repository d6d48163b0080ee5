package requestid

import "context"

// Header is the HTTP header carrying the request id
const Header = "X-Request-ID"

type ctxKey struct{}

// WithContext returns a copy of ctx carrying id
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id stored in ctx, or ""
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
