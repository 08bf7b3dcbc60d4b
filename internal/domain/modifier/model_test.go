package modifier

import (
	"testing"
	"time"

	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceModifier_Apply(t *testing.T) {
	tests := []struct {
		name        string
		modType     types.ModifierType
		value       decimal.Decimal
		running     decimal.Decimal
		expected    decimal.Decimal
		wantClamped bool
	}{
		{
			name:     "percent increase",
			modType:  types.ModifierTypePercentInc,
			value:    decimal.NewFromInt(10),
			running:  decimal.NewFromInt(500),
			expected: decimal.NewFromInt(550),
		},
		{
			name:     "flat increase",
			modType:  types.ModifierTypeFlatInc,
			value:    decimal.NewFromInt(50),
			running:  decimal.NewFromInt(500),
			expected: decimal.NewFromInt(550),
		},
		{
			name:     "percent decrease",
			modType:  types.ModifierTypePercentDec,
			value:    decimal.NewFromInt(20),
			running:  decimal.NewFromInt(500),
			expected: decimal.NewFromInt(400),
		},
		{
			name:     "flat decrease",
			modType:  types.ModifierTypeFlatDec,
			value:    decimal.NewFromInt(120),
			running:  decimal.NewFromInt(500),
			expected: decimal.NewFromInt(380),
		},
		{
			name:     "fractional percent",
			modType:  types.ModifierTypePercentInc,
			value:    decimal.NewFromFloat(7.5),
			running:  decimal.NewFromInt(400),
			expected: decimal.NewFromInt(430),
		},
		{
			name:        "flat decrease clamps at zero",
			modType:     types.ModifierTypeFlatDec,
			value:       decimal.NewFromInt(600),
			running:     decimal.NewFromInt(500),
			expected:    decimal.Zero,
			wantClamped: true,
		},
		{
			name:     "decrease to exactly zero is not clamped",
			modType:  types.ModifierTypeFlatDec,
			value:    decimal.NewFromInt(500),
			running:  decimal.NewFromInt(500),
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &PriceModifier{ModifierType: tt.modType, Value: tt.value}
			result, clamped := m.Apply(tt.running)
			assert.True(t, result.Equal(tt.expected), "got %s want %s", result, tt.expected)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func TestPriceModifier_IsActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		from     *time.Time
		until    *time.Time
		expected bool
	}{
		{name: "no window is always active", expected: true},
		{name: "inside window", from: &yesterday, until: &tomorrow, expected: true},
		{name: "before window opens", from: &tomorrow, expected: false},
		{name: "after window closes", until: &yesterday, expected: false},
		{name: "boundary instant is active", from: &now, until: &now, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &PriceModifier{ValidFrom: tt.from, ValidUntil: tt.until}
			assert.Equal(t, tt.expected, m.IsActiveAt(now))
		})
	}
}

func TestPriceModifier_HasUsageCapacity(t *testing.T) {
	unlimited := &PriceModifier{UsedCount: 9999}
	assert.True(t, unlimited.HasUsageCapacity())

	remaining := &PriceModifier{UsageLimit: lo.ToPtr(10), UsedCount: 9}
	assert.True(t, remaining.HasUsageCapacity())

	exhausted := &PriceModifier{UsageLimit: lo.ToPtr(10), UsedCount: 10}
	assert.False(t, exhausted.HasUsageCapacity())
}

func TestPriceModifier_Validate(t *testing.T) {
	tests := []struct {
		name          string
		modifier      PriceModifier
		expectedError string
	}{
		{
			name: "global scope with no discriminators",
			modifier: PriceModifier{
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(5),
			},
		},
		{
			name: "zone scope with zone id",
			modifier: PriceModifier{
				AppliesTo:    types.ModifierScopeZone,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(5),
				GeoZoneID:    lo.ToPtr("zone_india"),
			},
		},
		{
			name: "segment scope missing segment id",
			modifier: PriceModifier{
				AppliesTo:    types.ModifierScopeSegment,
				ModifierType: types.ModifierTypePercentDec,
				Value:        decimal.NewFromInt(5),
			},
			expectedError: "missing scope discriminator",
		},
		{
			name: "attribute scope with stray product id",
			modifier: PriceModifier{
				AppliesTo:    types.ModifierScopeAttribute,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(40),
				PricingKey:   lo.ToPtr("paper_gsm_700"),
				ProductID:    lo.ToPtr("prod_cards"),
			},
			expectedError: "unexpected scope discriminator",
		},
		{
			name: "negative priority",
			modifier: PriceModifier{
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(5),
				Priority:     -1,
			},
			expectedError: "priority must be non-negative",
		},
		{
			name: "validity window on product modifier",
			modifier: PriceModifier{
				AppliesTo:    types.ModifierScopeProduct,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(50),
				ProductID:    lo.ToPtr("prod_cards"),
				ValidFrom:    lo.ToPtr(time.Now().UTC()),
			},
			expectedError: "usage and validity fields are promo-only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.modifier.Validate()
			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}
