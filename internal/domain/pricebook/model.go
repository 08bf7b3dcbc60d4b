package pricebook

import (
	"github.com/printprice/printprice/internal/types"
	"github.com/shopspring/decimal"
)

// PriceBook is a named, currency-scoped price list. A book may be bound to a
// geo zone ("zone book"); exactly one book per currency is flagged IsDefault
// and acts as the fallback when no zone book covers the request.
type PriceBook struct {
	// ID uuid identifier for the price book
	ID string `db:"id" json:"id"`

	// Name of the price book ex "India Default", "Mumbai Metro"
	Name string `db:"name" json:"name"`

	// Currency 3 letter ISO code for every price in the book ex INR
	Currency string `db:"currency" json:"currency"`

	// GeoZoneID binds the book to a zone; nil for audience-wide books
	GeoZoneID *string `db:"geo_zone_id" json:"geo_zone_id"`

	// IsDefault marks the fallback book for the currency. The repository
	// enforces at most one default per currency transactionally.
	IsDefault bool `db:"is_default" json:"is_default"`

	types.BaseModel
}

// PriceBookEntry binds a book to a product for one quantity tier. The entry
// carries the base price every modifier starts from.
type PriceBookEntry struct {
	// ID uuid identifier for the entry
	ID string `db:"id" json:"id"`

	// PriceBookID references the owning book
	PriceBookID string `db:"price_book_id" json:"price_book_id"`

	// ProductID references the priced product
	ProductID string `db:"product_id" json:"product_id"`

	// BasePrice is the starting price before any modifier
	BasePrice decimal.Decimal `db:"base_price" json:"base_price"`

	// CompareAtPrice is an optional strike through display price
	CompareAtPrice *decimal.Decimal `db:"compare_at_price" json:"compare_at_price"`

	// MinQuantity and MaxQuantity bound the quantity tier this entry covers.
	// MaxQuantity nil means unbounded.
	MinQuantity int  `db:"min_quantity" json:"min_quantity"`
	MaxQuantity *int `db:"max_quantity" json:"max_quantity"`

	// PriceKind states whether BasePrice is per unit or already the total
	// for the whole tier
	PriceKind types.PriceKind `db:"price_kind" json:"price_kind"`

	types.BaseModel
}

// CoversQuantity reports whether the entry's tier window contains the given
// quantity.
func (e *PriceBookEntry) CoversQuantity(quantity int) bool {
	if quantity < e.MinQuantity {
		return false
	}
	if e.MaxQuantity != nil && quantity > *e.MaxQuantity {
		return false
	}
	return true
}
