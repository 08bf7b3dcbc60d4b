package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/types"
)

// SentryMiddleware reports request performance and panics to Sentry. When
// Sentry is disabled it collapses to a pass-through so the handler chain
// stays uniform.
//
// It sits in front of the context middlewares so its recover catches their
// panics too; SentryTagsMiddleware adds the correlation ids afterwards.
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryTagsMiddleware copies the request and tenant ids onto the Sentry
// scope so events can be grouped per tenant. Without a hub on the context
// (Sentry disabled) it does nothing.
func SentryTagsMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		ctx := c.Request.Context()
		hub.Scope().SetTag("request_id", types.GetRequestID(ctx))
		if tenantID := types.GetTenantID(ctx); tenantID != "" {
			hub.Scope().SetTag("tenant_id", tenantID)
		}
	}

	c.Next()
}
