package geozone

import (
	"github.com/printprice/printprice/internal/types"
)

// MaxChainDepth bounds the parent walk when resolving a zone chain. A chain
// deeper than this indicates a cycle introduced by careless editing of the
// zone tree, and resolution fails instead of looping.
const MaxChainDepth = 10

// GeoZone is a named delivery region. Zones nest through ParentID to form a
// tree (city -> state -> country); a pincode resolves to the most specific
// matching zone and inherits pricing from every ancestor.
type GeoZone struct {
	// ID uuid identifier for the geo zone
	ID string `db:"id" json:"id"`

	// Name of the zone ex "Mumbai", "Maharashtra", "India"
	Name string `db:"name" json:"name"`

	// Code is a short unique code for the zone ex MUM, MH, IN
	Code string `db:"code" json:"code"`

	// ParentID references the enclosing zone, empty for a root zone
	ParentID *string `db:"parent_id" json:"parent_id"`

	// IsRestricted marks territories with no fulfillment; resolution to a
	// restricted terminal zone yields a not-serviceable result
	IsRestricted bool `db:"is_restricted" json:"is_restricted"`

	// WarehouseCode optionally binds the zone to a dispatch warehouse
	WarehouseCode *string `db:"warehouse_code" json:"warehouse_code"`

	// Currency optionally overrides the display currency for the zone
	Currency *string `db:"currency" json:"currency"`

	// PincodeFrom and PincodeTo define an inclusive pincode range for the
	// zone. Codes are zero-padded 6 digit strings so lexical comparison
	// matches numeric order.
	PincodeFrom *string `db:"pincode_from" json:"pincode_from"`
	PincodeTo   *string `db:"pincode_to" json:"pincode_to"`

	types.BaseModel
}

// ContainsPincode reports whether the zone's pincode range covers the given
// pincode. Zones without a range never match directly; they participate only
// as ancestors.
func (z *GeoZone) ContainsPincode(pincode string) bool {
	if z.PincodeFrom == nil || z.PincodeTo == nil {
		return false
	}
	return pincode >= *z.PincodeFrom && pincode <= *z.PincodeTo
}
