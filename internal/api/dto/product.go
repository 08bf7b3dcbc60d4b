package dto

import (
	"github.com/printprice/printprice/internal/domain/product"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents the request to create a new product
type CreateProductRequest struct {
	Name                  string          `json:"name" validate:"required"`
	Description           string          `json:"description,omitempty"`
	GSTPercentage         decimal.Decimal `json:"gst_percentage"`
	ShowPriceIncludingGST bool            `json:"show_price_including_gst"`
}

// UpdateProductRequest represents the request to update an existing product
type UpdateProductRequest struct {
	Name                  *string          `json:"name,omitempty"`
	Description           *string          `json:"description,omitempty"`
	GSTPercentage         *decimal.Decimal `json:"gst_percentage,omitempty"`
	ShowPriceIncludingGST *bool            `json:"show_price_including_gst,omitempty"`
}

// Validate validates the CreateProductRequest
func (r *CreateProductRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	return validateGSTPercentage(r.GSTPercentage)
}

// Validate validates the UpdateProductRequest
func (r *UpdateProductRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a product name").
			Mark(ierr.ErrValidation)
	}

	if r.GSTPercentage != nil {
		if err := validateGSTPercentage(*r.GSTPercentage); err != nil {
			return err
		}
	}

	return nil
}

func validateGSTPercentage(p decimal.Decimal) error {
	if p.LessThan(decimal.Zero) || p.GreaterThan(decimal.NewFromInt(100)) {
		return ierr.NewError("gst_percentage must be between 0 and 100").
			WithHint("Please provide a valid GST percentage").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToProduct converts the request to a product domain object
func (r *CreateProductRequest) ToProduct(baseModel types.BaseModel) *product.Product {
	return &product.Product{
		ID:                    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		Name:                  r.Name,
		Description:           r.Description,
		GSTPercentage:         r.GSTPercentage,
		ShowPriceIncludingGST: r.ShowPriceIncludingGST,
		BaseModel:             baseModel,
	}
}

// ProductResponse represents the response for product data
type ProductResponse struct {
	*product.Product `json:",inline"`
}

// ListProductsResponse represents the response for listing products
type ListProductsResponse = types.ListResponse[*ProductResponse]
