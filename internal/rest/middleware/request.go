package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/printprice/printprice/internal/types"
)

// RequestIDMiddleware tags every request with a correlation id. Inbound
// X-Request-ID values are kept so ids survive proxy hops; otherwise a fresh
// one is issued. The id rides on the request context for log correlation and
// is echoed on the response.
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(types.HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}

	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), id))
	c.Header(types.HeaderRequestID, id)

	c.Next()
}
