package pricing

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// Repository defines the interface for price snapshot and calculation log
// data access. Snapshots and their logs are append-only: there is no update
// operation on purpose.
type Repository interface {
	// CreateSnapshot persists a snapshot
	CreateSnapshot(ctx context.Context, snapshot *PriceSnapshot) error

	// GetSnapshot returns a snapshot by id
	GetSnapshot(ctx context.Context, id string) (*PriceSnapshot, error)

	// GetSnapshotByOrder returns the latest snapshot for an order
	GetSnapshotByOrder(ctx context.Context, orderID string) (*PriceSnapshot, error)

	// ListSnapshots returns snapshots matching the filter
	ListSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) ([]*PriceSnapshot, error)

	// CountSnapshots returns the number of snapshots matching the filter
	CountSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) (int, error)

	// CreateCalculationLogs persists the ordered audit rows for a snapshot
	CreateCalculationLogs(ctx context.Context, logs []*CalculationLog) error

	// ListCalculationLogs returns a snapshot's audit rows ordered by step
	ListCalculationLogs(ctx context.Context, snapshotID string) ([]*CalculationLog, error)
}
