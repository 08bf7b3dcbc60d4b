package dto

import (
	"regexp"

	"github.com/printprice/printprice/internal/domain/geozone"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// CreateGeoZoneRequest represents the request to create a new geo zone
type CreateGeoZoneRequest struct {
	Name          string  `json:"name" validate:"required"`
	Code          string  `json:"code" validate:"required"`
	ParentID      *string `json:"parent_id,omitempty"`
	IsRestricted  bool    `json:"is_restricted"`
	WarehouseCode *string `json:"warehouse_code,omitempty"`
	Currency      *string `json:"currency,omitempty"`
	PincodeFrom   *string `json:"pincode_from,omitempty"`
	PincodeTo     *string `json:"pincode_to,omitempty"`
}

// UpdateGeoZoneRequest represents the request to update an existing geo zone
type UpdateGeoZoneRequest struct {
	Name          *string `json:"name,omitempty"`
	ParentID      *string `json:"parent_id,omitempty"`
	IsRestricted  *bool   `json:"is_restricted,omitempty"`
	WarehouseCode *string `json:"warehouse_code,omitempty"`
	Currency      *string `json:"currency,omitempty"`
	PincodeFrom   *string `json:"pincode_from,omitempty"`
	PincodeTo     *string `json:"pincode_to,omitempty"`
}

// Validate validates the CreateGeoZoneRequest
func (r *CreateGeoZoneRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := validateCurrencyOverride(r.Currency); err != nil {
		return err
	}

	return validatePincodeRange(r.PincodeFrom, r.PincodeTo)
}

// Validate validates the UpdateGeoZoneRequest
func (r *UpdateGeoZoneRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a zone name").
			Mark(ierr.ErrValidation)
	}

	if err := validateCurrencyOverride(r.Currency); err != nil {
		return err
	}

	return validatePincodeRange(r.PincodeFrom, r.PincodeTo)
}

// validateCurrencyOverride accepts an absent or empty override; a set one
// must be a currency the platform can price in.
func validateCurrencyOverride(currency *string) error {
	if currency == nil || *currency == "" {
		return nil
	}

	if !types.IsSupportedCurrency(*currency) {
		return ierr.NewError("currency is not supported").
			WithHint("Please provide a supported ISO 4217 currency code").
			WithReportableDetails(map[string]any{
				"currency": *currency,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// validatePincodeRange enforces that pincode bounds come in pairs of
// zero-padded six digit codes with from <= to, so lexical comparison in the
// resolver matches numeric order.
func validatePincodeRange(from, to *string) error {
	if (from == nil) != (to == nil) {
		return ierr.NewError("pincode range must set both bounds").
			WithHint("Please provide both pincode_from and pincode_to, or neither").
			Mark(ierr.ErrValidation)
	}

	if from == nil {
		return nil
	}

	if !pincodePattern.MatchString(*from) || !pincodePattern.MatchString(*to) {
		return ierr.NewError("pincodes must be 6 digit codes").
			WithHint("Please provide zero-padded 6 digit pincodes").
			WithReportableDetails(map[string]any{
				"pincode_from": *from,
				"pincode_to":   *to,
			}).
			Mark(ierr.ErrValidation)
	}

	if *from > *to {
		return ierr.NewError("pincode_from must not exceed pincode_to").
			WithHint("Please provide a valid pincode range").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToGeoZone converts the request to a geo zone domain object
func (r *CreateGeoZoneRequest) ToGeoZone(baseModel types.BaseModel) *geozone.GeoZone {
	currency := r.Currency
	if currency != nil && *currency != "" {
		normalized := types.NormalizeCurrency(*currency)
		currency = &normalized
	}

	return &geozone.GeoZone{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_GEO_ZONE),
		Name:          r.Name,
		Code:          r.Code,
		ParentID:      r.ParentID,
		IsRestricted:  r.IsRestricted,
		WarehouseCode: r.WarehouseCode,
		Currency:      currency,
		PincodeFrom:   r.PincodeFrom,
		PincodeTo:     r.PincodeTo,
		BaseModel:     baseModel,
	}
}

// GeoZoneResponse represents the response for geo zone data
type GeoZoneResponse struct {
	*geozone.GeoZone `json:",inline"`
}

// ListGeoZonesResponse represents the response for listing geo zones
type ListGeoZonesResponse = types.ListResponse[*GeoZoneResponse]

// ResolveZoneChainResponse represents the resolved zone chain for a pincode,
// ordered most specific first
type ResolveZoneChainResponse struct {
	Pincode string             `json:"pincode"`
	Chain   []*GeoZoneResponse `json:"chain"`
}
