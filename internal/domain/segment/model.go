package segment

import (
	"github.com/printprice/printprice/internal/types"
)

// UserSegment is a named pricing tier. A user account carries at most one
// segment; anonymous or unclassified users fall back to the single segment
// flagged IsDefault.
type UserSegment struct {
	// ID uuid identifier for the segment
	ID string `db:"id" json:"id"`

	// Code is the unique tier code ex RETAIL, CORPORATE, VIP
	Code string `db:"code" json:"code"`

	// Name is the human readable tier name
	Name string `db:"name" json:"name"`

	// Description of the segment
	Description string `db:"description" json:"description"`

	// IsDefault marks the fallback segment for guests. Exactly one segment
	// has IsDefault true at any time; the repository enforces this
	// transactionally on update.
	IsDefault bool `db:"is_default" json:"is_default"`

	types.BaseModel
}
