package middleware

import (
	"github.com/printprice/printprice/internal/types"
	"github.com/gin-gonic/gin"
)

// TenantContextMiddleware seeds the tenant and user identifiers into the
// request context for downstream services. Callers may pin a tenant via the
// X-Tenant-ID and X-User-ID headers; absent those the platform defaults
// apply, which keeps single-tenant deployments header-free.
func TenantContextMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}

	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	ctx = types.SetUserID(ctx, userID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
