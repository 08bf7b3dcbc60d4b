package errors

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// safeDetailsPrefix tags the safe-details payload that carries the builder's
// reportable details as JSON. NewErrorResponse strips it back out.
const safeDetailsPrefix = "__json__:"

// ErrorBuilder accumulates an error chain fluently. It is not itself an
// error: the chain must end with Mark, which applies the sentinel and
// returns the built error.
type ErrorBuilder struct {
	err error
}

// NewError starts a chain from a fresh message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// WithError starts a chain from an existing error, usually one returned by a
// driver or library.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithHint attaches the user-facing message rendered by the API error
// handler. Hints must not leak internals.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

// WithHintf is WithHint with formatting.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to return to the
// caller, for example the offending id or pincode.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	payload, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, safeDetailsPrefix+"%s", errors.Safe(string(payload)))
	return b
}

// Mark stamps the sentinel on the chain and returns the finished error.
func (b *ErrorBuilder) Mark(sentinel error) error {
	b.err = errors.Mark(b.err, sentinel)
	return b.err
}
