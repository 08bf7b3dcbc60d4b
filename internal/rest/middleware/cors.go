package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/printprice/printprice/internal/types"
)

// CORSMiddleware answers preflight requests and attaches permissive CORS
// headers. Deployments that need origin restrictions put a gateway in front;
// the API itself stays open for server-to-server callers.
func CORSMiddleware(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", strings.Join([]string{
		"Content-Type",
		types.HeaderRequestID,
		types.HeaderTenantID,
		types.HeaderUserID,
	}, ", "))
	h.Set("Access-Control-Expose-Headers", types.HeaderRequestID)
	h.Set("Access-Control-Max-Age", "86400")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
