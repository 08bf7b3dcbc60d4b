package postgres

import (
	"context"

	sentryService "github.com/printprice/printprice/internal/sentry"
)

// IClient is the database surface services depend on. Repositories hold the
// concrete *DB; services only coordinate transaction boundaries, so the
// interface stays narrow and tests can run transactional flows without a
// database.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)

// spanClient runs each transaction under a Sentry span. The span is a no-op
// when Sentry is disabled.
type spanClient struct {
	db     *DB
	sentry *sentryService.Service
}

// NewClient exposes the DB through the service-facing interface with
// transaction tracing attached.
func NewClient(db *DB, sentry *sentryService.Service) IClient {
	return &spanClient{db: db, sentry: sentry}
}

func (c *spanClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	span, ctx := c.sentry.StartDBSpan(ctx, "postgres.transaction", nil)
	if span != nil {
		defer span.Finish()
	}
	return c.db.WithTx(ctx, fn)
}
