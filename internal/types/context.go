package types

import "context"

// ContextKey types the values the middleware stack threads through request
// contexts.
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxTenantID  ContextKey = "ctx_tenant_id"
	CtxUserID    ContextKey = "ctx_user_id"
)

// DefaultTenantID and DefaultUserID identify the platform tenant and system
// actor for requests that don't pin their own, and for background work.
const (
	DefaultTenantID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID   = "00000000-0000-0000-0000-000000000000"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTenantID  = "X-Tenant-ID"
	HeaderUserID    = "X-User-ID"
)

func ctxString(ctx context.Context, key ContextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// GetTenantID returns the tenant bound to the context, or "" outside a
// request scope.
func GetTenantID(ctx context.Context) string {
	return ctxString(ctx, CtxTenantID)
}

// GetUserID returns the acting user bound to the context, or "".
func GetUserID(ctx context.Context) string {
	return ctxString(ctx, CtxUserID)
}

// GetRequestID returns the correlation id bound to the context, or "".
func GetRequestID(ctx context.Context) string {
	return ctxString(ctx, CtxRequestID)
}

func SetTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, CtxTenantID, tenantID)
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}
