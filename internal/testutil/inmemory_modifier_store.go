package testutil

import (
	"context"
	"sync"

	"github.com/printprice/printprice/internal/domain/modifier"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// InMemoryPriceModifierStore implements modifier.Repository
type InMemoryPriceModifierStore struct {
	*InMemoryStore[*modifier.PriceModifier]

	// incMu linearizes IncrementUsage the way the guarded UPDATE does in
	// postgres: concurrent redemptions queue on it, so the usage limit can
	// never be overshot even under races.
	incMu sync.Mutex
}

func NewInMemoryPriceModifierStore() *InMemoryPriceModifierStore {
	return &InMemoryPriceModifierStore{
		InMemoryStore: NewInMemoryStore[*modifier.PriceModifier](),
	}
}

func copyPriceModifier(m *modifier.PriceModifier) *modifier.PriceModifier {
	if m == nil {
		return nil
	}
	copied := *m
	return &copied
}

func (s *InMemoryPriceModifierStore) Create(ctx context.Context, m *modifier.PriceModifier) error {
	if m == nil {
		return ierr.NewError("price modifier cannot be nil").
			WithHint("Price modifier cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, m.ID, copyPriceModifier(m))
}

func (s *InMemoryPriceModifierStore) Get(ctx context.Context, id string) (*modifier.PriceModifier, error) {
	m, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("price modifier not found").
			WithHintf("Price modifier with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceModifier(m), nil
}

func (s *InMemoryPriceModifierStore) GetByPromoCode(ctx context.Context, code string) (*modifier.PriceModifier, error) {
	modifiers, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, m *modifier.PriceModifier, _ interface{}) bool {
		return m != nil &&
			m.TenantID == types.GetTenantID(ctx) &&
			m.Status == types.StatusPublished &&
			m.AppliesTo == types.ModifierScopePromoCode &&
			m.PromoCode != nil &&
			*m.PromoCode == code
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(modifiers) == 0 {
		return nil, ierr.NewError("promo code not found").
			WithHintf("Promo code %s does not exist", code).
			Mark(ierr.ErrNotFound)
	}
	return copyPriceModifier(modifiers[0]), nil
}

func (s *InMemoryPriceModifierStore) List(ctx context.Context, filter *types.PriceModifierFilter) ([]*modifier.PriceModifier, error) {
	items, err := s.InMemoryStore.List(ctx, filter, priceModifierFilterFn, priceModifierSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(m *modifier.PriceModifier, _ int) *modifier.PriceModifier {
		return copyPriceModifier(m)
	}), nil
}

func (s *InMemoryPriceModifierStore) Count(ctx context.Context, filter *types.PriceModifierFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, priceModifierFilterFn)
}

func (s *InMemoryPriceModifierStore) ListCandidates(ctx context.Context, params modifier.CandidateParams) ([]*modifier.PriceModifier, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, m *modifier.PriceModifier, _ interface{}) bool {
		if m == nil || m.TenantID != types.GetTenantID(ctx) || m.Status != types.StatusPublished {
			return false
		}

		switch m.AppliesTo {
		case types.ModifierScopeGlobal:
			return true
		case types.ModifierScopeZone:
			return m.GeoZoneID != nil && lo.Contains(params.GeoZoneIDs, *m.GeoZoneID)
		case types.ModifierScopeSegment:
			return m.UserSegmentID != nil && params.UserSegmentID != "" && *m.UserSegmentID == params.UserSegmentID
		case types.ModifierScopeProduct:
			return m.ProductID != nil && params.ProductID != "" && *m.ProductID == params.ProductID
		case types.ModifierScopeAttribute:
			return m.PricingKey != nil && lo.Contains(params.PricingKeys, *m.PricingKey)
		case types.ModifierScopePromoCode:
			return m.PromoCode != nil && lo.Contains(params.PromoCodes, *m.PromoCode)
		default:
			return false
		}
	}, priceModifierSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(m *modifier.PriceModifier, _ int) *modifier.PriceModifier {
		return copyPriceModifier(m)
	}), nil
}

func (s *InMemoryPriceModifierStore) Update(ctx context.Context, m *modifier.PriceModifier) error {
	if m == nil {
		return ierr.NewError("price modifier cannot be nil").
			WithHint("Price modifier cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, m.ID, copyPriceModifier(m))
}

func (s *InMemoryPriceModifierStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryPriceModifierStore) IncrementUsage(ctx context.Context, id string) error {
	s.incMu.Lock()
	defer s.incMu.Unlock()

	m, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewError("price modifier not found").
			WithHintf("Price modifier with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	if m.UsageLimit != nil && m.UsedCount >= *m.UsageLimit {
		return ierr.NewError("promo code usage limit reached").
			WithHint("This promo code has no redemptions left").
			WithReportableDetails(map[string]any{
				"modifier_id": id,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	updated := copyPriceModifier(m)
	updated.UsedCount++
	return s.InMemoryStore.Update(ctx, id, updated)
}

func priceModifierFilterFn(ctx context.Context, m *modifier.PriceModifier, filter interface{}) bool {
	if m == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && m.TenantID != tenantID {
		return false
	}

	if m.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.PriceModifierFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.Scopes) > 0 && !lo.Contains(f.Scopes, m.AppliesTo) {
		return false
	}

	if len(f.GeoZoneIDs) > 0 {
		if m.GeoZoneID == nil || !lo.Contains(f.GeoZoneIDs, *m.GeoZoneID) {
			return false
		}
	}

	if f.SegmentID != nil {
		if m.UserSegmentID == nil || *m.UserSegmentID != *f.SegmentID {
			return false
		}
	}

	if f.ProductID != nil {
		if m.ProductID == nil || *m.ProductID != *f.ProductID {
			return false
		}
	}

	if len(f.PricingKeys) > 0 {
		if m.PricingKey == nil || !lo.Contains(f.PricingKeys, *m.PricingKey) {
			return false
		}
	}

	if len(f.PromoCodes) > 0 {
		if m.PromoCode == nil || !lo.Contains(f.PromoCodes, *m.PromoCode) {
			return false
		}
	}

	return true
}

func priceModifierSortFn(i, j *modifier.PriceModifier) bool {
	if i.Priority != j.Priority {
		return i.Priority < j.Priority
	}
	return i.ID < j.ID
}
