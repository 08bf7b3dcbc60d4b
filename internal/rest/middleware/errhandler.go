package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/types"
)

// ErrorHandler renders the last error a handler pushed onto the gin context
// as the standard error body. Handlers return early after c.Error, so at
// most one response is written per request. Server side failures are logged
// with the request id; client errors are the caller's problem and stay
// quiet.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		if status >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"status", status,
				"error", err,
				"request_id", types.GetRequestID(c.Request.Context()),
				"path", c.FullPath(),
			)
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
