package dto

import (
	"github.com/printprice/printprice/internal/domain/pricebook"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
	"github.com/shopspring/decimal"
)

// CreatePriceBookRequest represents the request to create a new price book
type CreatePriceBookRequest struct {
	Name      string  `json:"name" validate:"required"`
	Currency  string  `json:"currency" validate:"required"`
	GeoZoneID *string `json:"geo_zone_id,omitempty"`
	IsDefault bool    `json:"is_default"`
}

// UpdatePriceBookRequest represents the request to update an existing price book
type UpdatePriceBookRequest struct {
	Name      *string `json:"name,omitempty"`
	GeoZoneID *string `json:"geo_zone_id,omitempty"`
}

// Validate validates the CreatePriceBookRequest
func (r *CreatePriceBookRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if len(r.Currency) != 3 {
		return ierr.NewError("currency must be a 3 letter ISO code").
			WithHint("Please provide a 3 letter ISO 4217 currency code").
			WithReportableDetails(map[string]any{
				"currency": r.Currency,
			}).
			Mark(ierr.ErrValidation)
	}

	if !types.IsSupportedCurrency(r.Currency) {
		return ierr.NewError("currency is not supported").
			WithHint("Please provide a supported ISO 4217 currency code").
			WithReportableDetails(map[string]any{
				"currency": r.Currency,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Validate validates the UpdatePriceBookRequest
func (r *UpdatePriceBookRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a price book name").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToPriceBook converts the request to a price book domain object
func (r *CreatePriceBookRequest) ToPriceBook(baseModel types.BaseModel) *pricebook.PriceBook {
	return &pricebook.PriceBook{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICE_BOOK),
		Name:      r.Name,
		Currency:  types.NormalizeCurrency(r.Currency),
		GeoZoneID: r.GeoZoneID,
		IsDefault: r.IsDefault,
		BaseModel: baseModel,
	}
}

// PriceBookResponse represents the response for price book data
type PriceBookResponse struct {
	*pricebook.PriceBook `json:",inline"`
}

// ListPriceBooksResponse represents the response for listing price books
type ListPriceBooksResponse = types.ListResponse[*PriceBookResponse]

// CreatePriceBookEntryRequest represents the request to add an entry to a
// price book. The price book id comes from the URL path.
type CreatePriceBookEntryRequest struct {
	ProductID      string           `json:"product_id" validate:"required"`
	BasePrice      decimal.Decimal  `json:"base_price" validate:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	MinQuantity    int              `json:"min_quantity"`
	MaxQuantity    *int             `json:"max_quantity,omitempty"`
	PriceKind      types.PriceKind  `json:"price_kind"`
}

// UpdatePriceBookEntryRequest represents the request to update an entry
type UpdatePriceBookEntryRequest struct {
	BasePrice      *decimal.Decimal `json:"base_price,omitempty"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	MinQuantity    *int             `json:"min_quantity,omitempty"`
	MaxQuantity    *int             `json:"max_quantity,omitempty"`
	PriceKind      *types.PriceKind `json:"price_kind,omitempty"`
}

// Validate validates the CreatePriceBookEntryRequest
func (r *CreatePriceBookEntryRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.BasePrice.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("base_price must be greater than zero").
			WithHint("Please provide a positive base price").
			Mark(ierr.ErrValidation)
	}

	// min_quantity 0 means unset and defaults to 1
	if r.MinQuantity < 0 {
		return ierr.NewError("min_quantity must not be negative").
			WithHint("Please provide a valid quantity tier").
			Mark(ierr.ErrValidation)
	}

	minQuantity := r.MinQuantity
	if minQuantity < 1 {
		minQuantity = 1
	}
	if r.MaxQuantity != nil && *r.MaxQuantity < minQuantity {
		return ierr.NewError("max_quantity must not be below min_quantity").
			WithHint("Please provide a valid quantity tier").
			Mark(ierr.ErrValidation)
	}

	if r.PriceKind != "" {
		if err := r.PriceKind.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate validates the UpdatePriceBookEntryRequest
func (r *UpdatePriceBookEntryRequest) Validate() error {
	if r.BasePrice != nil && r.BasePrice.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("base_price must be greater than zero").
			WithHint("Please provide a positive base price").
			Mark(ierr.ErrValidation)
	}

	if r.MinQuantity != nil && *r.MinQuantity < 1 {
		return ierr.NewError("min_quantity must be at least 1").
			WithHint("Please provide a valid quantity tier").
			Mark(ierr.ErrValidation)
	}

	if r.PriceKind != nil {
		if err := r.PriceKind.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ToPriceBookEntry converts the request to an entry domain object
func (r *CreatePriceBookEntryRequest) ToPriceBookEntry(priceBookID string, baseModel types.BaseModel) *pricebook.PriceBookEntry {
	kind := r.PriceKind
	if kind == "" {
		kind = types.PriceKindPerUnit
	}

	minQuantity := r.MinQuantity
	if minQuantity < 1 {
		minQuantity = 1
	}

	return &pricebook.PriceBookEntry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICE_BOOK_ENTRY),
		PriceBookID:    priceBookID,
		ProductID:      r.ProductID,
		BasePrice:      r.BasePrice,
		CompareAtPrice: r.CompareAtPrice,
		MinQuantity:    minQuantity,
		MaxQuantity:    r.MaxQuantity,
		PriceKind:      kind,
		BaseModel:      baseModel,
	}
}

// PriceBookEntryResponse represents the response for price book entry data
type PriceBookEntryResponse struct {
	*pricebook.PriceBookEntry `json:",inline"`
}

// ListPriceBookEntriesResponse represents the response for listing entries
type ListPriceBookEntriesResponse = types.ListResponse[*PriceBookEntryResponse]
