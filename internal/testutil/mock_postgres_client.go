package testutil

import (
	"context"
	"sync/atomic"

	"github.com/printprice/printprice/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient satisfies postgres.IClient for service tests. In-memory
// stores have no transaction semantics, so WithTx runs the function directly
// and counts the call; rollback behavior is asserted through store contents.
type MockPostgresClient struct {
	txCalls atomic.Int64
}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	c.txCalls.Add(1)
	return fn(ctx)
}

// TxCalls reports how many transactions the code under test opened.
func (c *MockPostgresClient) TxCalls() int {
	return int(c.txCalls.Load())
}
