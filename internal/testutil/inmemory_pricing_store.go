package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/printprice/printprice/internal/domain/pricing"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// InMemoryPricingStore implements pricing.Repository
type InMemoryPricingStore struct {
	snapshots *InMemoryStore[*pricing.PriceSnapshot]

	mu   sync.RWMutex
	logs []*pricing.CalculationLog
}

func NewInMemoryPricingStore() *InMemoryPricingStore {
	return &InMemoryPricingStore{
		snapshots: NewInMemoryStore[*pricing.PriceSnapshot](),
	}
}

func copyPriceSnapshot(s *pricing.PriceSnapshot) *pricing.PriceSnapshot {
	if s == nil {
		return nil
	}
	copied := *s
	copied.AppliedModifiers = append(pricing.JSONBAppliedModifiers{}, s.AppliedModifiers...)
	return &copied
}

func copyCalculationLog(l *pricing.CalculationLog) *pricing.CalculationLog {
	if l == nil {
		return nil
	}
	copied := *l
	return &copied
}

func (s *InMemoryPricingStore) CreateSnapshot(ctx context.Context, snapshot *pricing.PriceSnapshot) error {
	if snapshot == nil {
		return ierr.NewError("snapshot cannot be nil").
			WithHint("Snapshot cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.snapshots.Create(ctx, snapshot.ID, copyPriceSnapshot(snapshot))
}

func (s *InMemoryPricingStore) GetSnapshot(ctx context.Context, id string) (*pricing.PriceSnapshot, error) {
	snapshot, err := s.snapshots.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("price snapshot not found").
			WithHintf("Price snapshot with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceSnapshot(snapshot), nil
}

func (s *InMemoryPricingStore) GetSnapshotByOrder(ctx context.Context, orderID string) (*pricing.PriceSnapshot, error) {
	snapshots, err := s.snapshots.List(ctx, nil, func(ctx context.Context, snap *pricing.PriceSnapshot, _ interface{}) bool {
		return snap != nil &&
			snap.TenantID == types.GetTenantID(ctx) &&
			snap.Status == types.StatusPublished &&
			snap.OrderID == orderID
	}, func(i, j *pricing.PriceSnapshot) bool {
		return i.CalculatedAt.After(j.CalculatedAt)
	})
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, ierr.NewError("price snapshot not found").
			WithHintf("Order %s has no price snapshot", orderID).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceSnapshot(snapshots[0]), nil
}

func (s *InMemoryPricingStore) ListSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) ([]*pricing.PriceSnapshot, error) {
	items, err := s.snapshots.List(ctx, filter, priceSnapshotFilterFn, priceSnapshotSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(snap *pricing.PriceSnapshot, _ int) *pricing.PriceSnapshot {
		return copyPriceSnapshot(snap)
	}), nil
}

func (s *InMemoryPricingStore) CountSnapshots(ctx context.Context, filter *types.PriceSnapshotFilter) (int, error) {
	return s.snapshots.Count(ctx, filter, priceSnapshotFilterFn)
}

func (s *InMemoryPricingStore) CreateCalculationLogs(ctx context.Context, logs []*pricing.CalculationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, log := range logs {
		if log == nil {
			return ierr.NewError("calculation log cannot be nil").
				WithHint("Calculation log cannot be nil").
				Mark(ierr.ErrValidation)
		}
		s.logs = append(s.logs, copyCalculationLog(log))
	}
	return nil
}

func (s *InMemoryPricingStore) ListCalculationLogs(ctx context.Context, snapshotID string) ([]*pricing.CalculationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*pricing.CalculationLog
	for _, log := range s.logs {
		if log.SnapshotID == snapshotID && log.TenantID == types.GetTenantID(ctx) {
			result = append(result, copyCalculationLog(log))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StepIndex < result[j].StepIndex
	})

	return result, nil
}

// Clear wipes snapshots and logs
func (s *InMemoryPricingStore) Clear() {
	s.snapshots.Clear()
	s.mu.Lock()
	s.logs = nil
	s.mu.Unlock()
}

func priceSnapshotFilterFn(ctx context.Context, snap *pricing.PriceSnapshot, filter interface{}) bool {
	if snap == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && snap.TenantID != tenantID {
		return false
	}

	if snap.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.PriceSnapshotFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.OrderIDs) > 0 && !lo.Contains(f.OrderIDs, snap.OrderID) {
		return false
	}

	if len(f.ProductIDs) > 0 && !lo.Contains(f.ProductIDs, snap.ProductID) {
		return false
	}

	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && snap.CalculatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && snap.CalculatedAt.After(*f.EndTime) {
			return false
		}
	}

	return true
}

func priceSnapshotSortFn(i, j *pricing.PriceSnapshot) bool {
	return i.CalculatedAt.After(j.CalculatedAt)
}
