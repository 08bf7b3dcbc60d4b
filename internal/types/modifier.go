package types

import (
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/samber/lo"
)

// ModifierScope represents the dimension a price modifier is restricted to.
// Scope decides which requests a modifier applies to and, together with
// priority, where it lands in the deterministic application order.
type ModifierScope string

const (
	ModifierScopeGlobal    ModifierScope = "GLOBAL"
	ModifierScopeZone      ModifierScope = "ZONE"
	ModifierScopeSegment   ModifierScope = "SEGMENT"
	ModifierScopeProduct   ModifierScope = "PRODUCT"
	ModifierScopeAttribute ModifierScope = "ATTRIBUTE"
	ModifierScopePromoCode ModifierScope = "PROMO_CODE"
)

// scopePrecedence orders scopes for tie-breaking when two modifiers share the
// same priority: broader scopes apply before narrower ones. The order is
// load-bearing for price math and must not change without a migration plan
// for already-published modifiers.
var scopePrecedence = map[ModifierScope]int{
	ModifierScopeGlobal:    0,
	ModifierScopeZone:      1,
	ModifierScopeSegment:   2,
	ModifierScopeProduct:   3,
	ModifierScopeAttribute: 4,
	ModifierScopePromoCode: 5,
}

func (s ModifierScope) String() string {
	return string(s)
}

// Precedence returns the tie-break rank of the scope. Unknown scopes sort last.
func (s ModifierScope) Precedence() int {
	if p, ok := scopePrecedence[s]; ok {
		return p
	}
	return len(scopePrecedence)
}

func (s ModifierScope) Validate() error {
	allowed := []ModifierScope{
		ModifierScopeGlobal,
		ModifierScopeZone,
		ModifierScopeSegment,
		ModifierScopeProduct,
		ModifierScopeAttribute,
		ModifierScopePromoCode,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid modifier scope").
			WithHint("Please provide a valid modifier scope").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ModifierType represents how a modifier adjusts the running price.
type ModifierType string

const (
	// ModifierTypePercentInc increases the running price by value percent
	ModifierTypePercentInc ModifierType = "PERCENT_INC"
	// ModifierTypeFlatInc adds value to the running price
	ModifierTypeFlatInc ModifierType = "FLAT_INC"
	// ModifierTypePercentDec decreases the running price by value percent
	ModifierTypePercentDec ModifierType = "PERCENT_DEC"
	// ModifierTypeFlatDec subtracts value from the running price
	ModifierTypeFlatDec ModifierType = "FLAT_DEC"
)

func (t ModifierType) String() string {
	return string(t)
}

func (t ModifierType) Validate() error {
	allowed := []ModifierType{
		ModifierTypePercentInc,
		ModifierTypeFlatInc,
		ModifierTypePercentDec,
		ModifierTypeFlatDec,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid modifier type").
			WithHint("Please provide a valid modifier type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PriceModifierFilter defines the filter criteria for price modifiers
type PriceModifierFilter struct {
	*QueryFilter

	Scopes      []ModifierScope `json:"scopes,omitempty" form:"scopes"`
	GeoZoneIDs  []string        `json:"geo_zone_ids,omitempty" form:"geo_zone_ids"`
	SegmentID   *string         `json:"segment_id,omitempty" form:"segment_id"`
	ProductID   *string         `json:"product_id,omitempty" form:"product_id"`
	PricingKeys []string        `json:"pricing_keys,omitempty" form:"pricing_keys"`
	PromoCodes  []string        `json:"promo_codes,omitempty" form:"promo_codes"`
}

func NewPriceModifierFilter() *PriceModifierFilter {
	return &PriceModifierFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitPriceModifierFilter() *PriceModifierFilter {
	return &PriceModifierFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *PriceModifierFilter) Validate() error {
	if f == nil {
		return nil
	}

	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}

	for _, s := range f.Scopes {
		if err := s.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (f *PriceModifierFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *PriceModifierFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *PriceModifierFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *PriceModifierFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *PriceModifierFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *PriceModifierFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
