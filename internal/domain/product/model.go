package product

import (
	"github.com/printprice/printprice/internal/types"
	"github.com/shopspring/decimal"
)

// Product is the slice of a catalog product the pricing engine needs: the
// tax rate and whether the storefront shows tax-inclusive prices. Catalog
// content (images, copy, categories) lives outside this service.
type Product struct {
	// ID uuid identifier for the product
	ID string `db:"id" json:"id"`

	// Name of the product ex "Business Cards 350gsm"
	Name string `db:"name" json:"name"`

	// Description of the product
	Description string `db:"description" json:"description"`

	// GSTPercentage is the GST rate applied to this product ex 18 for 18%
	GSTPercentage decimal.Decimal `db:"gst_percentage" json:"gst_percentage"`

	// ShowPriceIncludingGST controls whether resolved prices are treated as
	// tax-inclusive: the computed subtotal already contains GST and the tax
	// amount is derived by back-calculation
	ShowPriceIncludingGST bool `db:"show_price_including_gst" json:"show_price_including_gst"`

	types.BaseModel
}
