package modifier

import (
	"time"

	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/shopspring/decimal"
)

// PriceModifier is the atomic unit of price change. Scope decides which
// requests it applies to; exactly one scope discriminator is set per scope,
// enforced by Validate. Priority orders application, lower first.
type PriceModifier struct {
	// ID uuid identifier for the modifier
	ID string `db:"id" json:"id"`

	// Name describes the modifier for admin and audit surfaces
	// ex "Monsoon surcharge", "VIP tier discount"
	Name string `db:"name" json:"name"`

	// AppliesTo is the modifier scope
	AppliesTo types.ModifierScope `db:"applies_to" json:"applies_to"`

	// ModifierType states how Value adjusts the running price
	ModifierType types.ModifierType `db:"modifier_type" json:"modifier_type"`

	// Value is the percent or flat amount, interpreted per ModifierType
	Value decimal.Decimal `db:"value" json:"value"`

	// Priority orders application; lower priorities apply earlier. Ties
	// break on scope precedence, then id.
	Priority int `db:"priority" json:"priority"`

	// Scope discriminators; exactly one is set, matching AppliesTo

	// GeoZoneID for ZONE scope; matches when the zone appears anywhere in
	// the resolved zone chain
	GeoZoneID *string `db:"geo_zone_id" json:"geo_zone_id"`

	// UserSegmentID for SEGMENT scope
	UserSegmentID *string `db:"user_segment_id" json:"user_segment_id"`

	// ProductID for PRODUCT scope
	ProductID *string `db:"product_id" json:"product_id"`

	// PricingKey for ATTRIBUTE scope; matches extracted attribute signals
	PricingKey *string `db:"pricing_key" json:"pricing_key"`

	// PromoCode for PROMO_CODE scope, the customer facing code ex DIWALI20
	PromoCode *string `db:"promo_code" json:"promo_code"`

	// UsageLimit caps total redemptions of a promo modifier, nil means
	// unlimited
	UsageLimit *int `db:"usage_limit" json:"usage_limit"`

	// UsedCount is the number of committed redemptions. Incremented only
	// through the repository's conditional increment so racing orders can
	// never exceed UsageLimit.
	UsedCount int `db:"used_count" json:"used_count"`

	// ValidFrom and ValidUntil bound the promo validity window
	ValidFrom  *time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil *time.Time `db:"valid_until" json:"valid_until"`

	types.BaseModel
}

// IsActiveAt checks the validity window against the given instant
func (m *PriceModifier) IsActiveAt(now time.Time) bool {
	if m.ValidFrom != nil && now.Before(*m.ValidFrom) {
		return false
	}
	if m.ValidUntil != nil && now.After(*m.ValidUntil) {
		return false
	}
	return true
}

// HasUsageCapacity checks whether the modifier has remaining redemptions.
// This read is advisory; the authoritative check is the conditional
// increment at commit time.
func (m *PriceModifier) HasUsageCapacity() bool {
	if m.UsageLimit == nil {
		return true
	}
	return m.UsedCount < *m.UsageLimit
}

// Apply adjusts the running price and returns the new value. The result is
// clamped at zero; clamped reports whether clamping occurred so the caller
// can record it for audit.
func (m *PriceModifier) Apply(running decimal.Decimal) (result decimal.Decimal, clamped bool) {
	hundred := decimal.NewFromInt(100)

	switch m.ModifierType {
	case types.ModifierTypePercentInc:
		result = running.Add(running.Mul(m.Value).Div(hundred))
	case types.ModifierTypeFlatInc:
		result = running.Add(m.Value)
	case types.ModifierTypePercentDec:
		result = running.Sub(running.Mul(m.Value).Div(hundred))
	case types.ModifierTypeFlatDec:
		result = running.Sub(m.Value)
	default:
		result = running
	}

	if result.LessThan(decimal.Zero) {
		return decimal.Zero, true
	}
	return result, false
}

// Validate enforces the tagged-union discipline on scope discriminators:
// each scope requires its own discriminator and forbids the others.
func (m *PriceModifier) Validate() error {
	if err := m.AppliesTo.Validate(); err != nil {
		return err
	}
	if err := m.ModifierType.Validate(); err != nil {
		return err
	}

	if m.Priority < 0 {
		return ierr.NewError("priority must be non-negative").
			WithHint("Modifier priority must be zero or positive").
			Mark(ierr.ErrValidation)
	}

	discriminators := map[types.ModifierScope]bool{
		types.ModifierScopeZone:      m.GeoZoneID != nil,
		types.ModifierScopeSegment:   m.UserSegmentID != nil,
		types.ModifierScopeProduct:   m.ProductID != nil,
		types.ModifierScopeAttribute: m.PricingKey != nil,
		types.ModifierScopePromoCode: m.PromoCode != nil,
	}

	for scope, present := range discriminators {
		if scope == m.AppliesTo && !present {
			return ierr.NewError("missing scope discriminator").
				WithHintf("A %s modifier requires its %s discriminator", m.AppliesTo, discriminatorName(scope)).
				WithReportableDetails(map[string]any{
					"applies_to": m.AppliesTo,
				}).
				Mark(ierr.ErrValidation)
		}
		if scope != m.AppliesTo && present {
			return ierr.NewError("unexpected scope discriminator").
				WithHintf("A %s modifier must not set the %s discriminator", m.AppliesTo, discriminatorName(scope)).
				WithReportableDetails(map[string]any{
					"applies_to": m.AppliesTo,
					"extra":      discriminatorName(scope),
				}).
				Mark(ierr.ErrValidation)
		}
	}

	if m.AppliesTo != types.ModifierScopePromoCode {
		if m.UsageLimit != nil || m.ValidFrom != nil || m.ValidUntil != nil {
			return ierr.NewError("usage and validity fields are promo-only").
				WithHint("Usage limits and validity windows apply only to PROMO_CODE modifiers").
				Mark(ierr.ErrValidation)
		}
	}

	if m.UsageLimit != nil && *m.UsageLimit < 1 {
		return ierr.NewError("usage limit must be positive").
			WithHint("Usage limit must be at least 1").
			Mark(ierr.ErrValidation)
	}

	if m.ValidFrom != nil && m.ValidUntil != nil && m.ValidUntil.Before(*m.ValidFrom) {
		return ierr.NewError("invalid validity window").
			WithHint("valid_until must be after valid_from").
			Mark(ierr.ErrValidation)
	}

	return nil
}

func discriminatorName(scope types.ModifierScope) string {
	switch scope {
	case types.ModifierScopeZone:
		return "geo_zone_id"
	case types.ModifierScopeSegment:
		return "user_segment_id"
	case types.ModifierScopeProduct:
		return "product_id"
	case types.ModifierScopeAttribute:
		return "pricing_key"
	case types.ModifierScopePromoCode:
		return "promo_code"
	default:
		return ""
	}
}
