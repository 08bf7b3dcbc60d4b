package testutil

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// SetupContext returns a context carrying the default tenant and user plus a
// fresh request id, matching what the request middleware builds in
// production.
func SetupContext() context.Context {
	ctx := types.SetTenantID(context.Background(), types.DefaultTenantID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	return types.SetRequestID(ctx, types.GenerateUUID())
}
