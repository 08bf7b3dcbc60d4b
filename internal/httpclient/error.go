package httpclient

import (
	goerrors "errors"
	"fmt"

	"github.com/printprice/printprice/internal/errors"
)

// Error is a non-2xx response surfaced as an error. The status code drives
// the delivery retry policy; the response body is kept for logging.
type Error struct {
	*errors.InternalError
	StatusCode int
	Response   []byte
}

// NewError wraps a failed response.
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		InternalError: errors.New(errors.ErrCodeHTTPClient, fmt.Sprintf("endpoint returned status %d", statusCode)),
		StatusCode:    statusCode,
		Response:      response,
	}
}

func (e *Error) Error() string {
	return e.InternalError.Error()
}

func (e *Error) Unwrap() error {
	return e.InternalError.Unwrap()
}

// IsHTTPError extracts an *Error from anywhere in err's chain.
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
