package router

import (
	"net"
	"net/http"

	"github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/httpclient"
	"github.com/printprice/printprice/internal/logger"
)

// shouldRetry decides whether another delivery attempt can possibly succeed.
// Rate limiting, upstream outages, and timeouts are transient; rejected
// payloads and misconfigured endpoints are not.
func shouldRetry(logger *logger.Logger, err error) bool {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		retry := retryableStatus(httpErr.StatusCode)
		if retry {
			logger.Debugw("retrying delivery",
				"status_code", httpErr.StatusCode,
				"error", httpErr,
			)
		} else {
			logger.Debugw("endpoint rejected delivery",
				"status_code", httpErr.StatusCode,
				"error", httpErr,
			)
		}
		return retry
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying after network timeout", "error", netErr)
		return true
	}

	// Domain failures do not heal on their own.
	if errors.IsValidation(err) ||
		errors.IsNotFound(err) ||
		errors.IsInvalidOperation(err) {
		return false
	}

	return true
}

// retryableStatus reports whether a response status signals a transient
// condition worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
