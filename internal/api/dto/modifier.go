package dto

import (
	"time"

	"github.com/printprice/printprice/internal/domain/modifier"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
	"github.com/shopspring/decimal"
)

// CreatePriceModifierRequest represents the request to create a price modifier
type CreatePriceModifierRequest struct {
	Name         string              `json:"name" validate:"required"`
	AppliesTo    types.ModifierScope `json:"applies_to" validate:"required"`
	ModifierType types.ModifierType  `json:"modifier_type" validate:"required"`
	Value        decimal.Decimal     `json:"value"`
	Priority     int                 `json:"priority"`

	GeoZoneID     *string `json:"geo_zone_id,omitempty"`
	UserSegmentID *string `json:"user_segment_id,omitempty"`
	ProductID     *string `json:"product_id,omitempty"`
	PricingKey    *string `json:"pricing_key,omitempty"`
	PromoCode     *string `json:"promo_code,omitempty"`

	UsageLimit *int       `json:"usage_limit,omitempty"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// UpdatePriceModifierRequest represents the request to update a modifier.
// Scope discriminators are immutable after creation; create a new modifier
// to retarget one.
type UpdatePriceModifierRequest struct {
	Name         *string             `json:"name,omitempty"`
	ModifierType *types.ModifierType `json:"modifier_type,omitempty"`
	Value        *decimal.Decimal    `json:"value,omitempty"`
	Priority     *int                `json:"priority,omitempty"`
	UsageLimit   *int                `json:"usage_limit,omitempty"`
	ValidFrom    *time.Time          `json:"valid_from,omitempty"`
	ValidUntil   *time.Time          `json:"valid_until,omitempty"`
}

// Validate validates the CreatePriceModifierRequest
func (r *CreatePriceModifierRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.AppliesTo.Validate(); err != nil {
		return err
	}

	if err := r.ModifierType.Validate(); err != nil {
		return err
	}

	if r.Value.LessThan(decimal.Zero) {
		return ierr.NewError("value must not be negative").
			WithHint("Use a DEC modifier type for discounts instead of a negative value").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Validate validates the UpdatePriceModifierRequest
func (r *UpdatePriceModifierRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a modifier name").
			Mark(ierr.ErrValidation)
	}

	if r.ModifierType != nil {
		if err := r.ModifierType.Validate(); err != nil {
			return err
		}
	}

	if r.Value != nil && r.Value.LessThan(decimal.Zero) {
		return ierr.NewError("value must not be negative").
			WithHint("Use a DEC modifier type for discounts instead of a negative value").
			Mark(ierr.ErrValidation)
	}

	if r.Priority != nil && *r.Priority < 0 {
		return ierr.NewError("priority must be non-negative").
			WithHint("Modifier priority must be zero or positive").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToPriceModifier converts the request to a modifier domain object. The
// result still needs the domain Validate call, which enforces the scope
// discriminator discipline.
func (r *CreatePriceModifierRequest) ToPriceModifier(baseModel types.BaseModel) *modifier.PriceModifier {
	return &modifier.PriceModifier{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICE_MODIFIER),
		Name:          r.Name,
		AppliesTo:     r.AppliesTo,
		ModifierType:  r.ModifierType,
		Value:         r.Value,
		Priority:      r.Priority,
		GeoZoneID:     r.GeoZoneID,
		UserSegmentID: r.UserSegmentID,
		ProductID:     r.ProductID,
		PricingKey:    r.PricingKey,
		PromoCode:     r.PromoCode,
		UsageLimit:    r.UsageLimit,
		UsedCount:     0,
		ValidFrom:     r.ValidFrom,
		ValidUntil:    r.ValidUntil,
		BaseModel:     baseModel,
	}
}

// PriceModifierResponse represents the response for price modifier data
type PriceModifierResponse struct {
	*modifier.PriceModifier `json:",inline"`
}

// ListPriceModifiersResponse represents the response for listing modifiers
type ListPriceModifiersResponse = types.ListResponse[*PriceModifierResponse]
