package modifier

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// Repository defines the interface for price modifier data access
type Repository interface {
	Create(ctx context.Context, modifier *PriceModifier) error
	Get(ctx context.Context, id string) (*PriceModifier, error)
	List(ctx context.Context, filter *types.PriceModifierFilter) ([]*PriceModifier, error)
	Count(ctx context.Context, filter *types.PriceModifierFilter) (int, error)
	Update(ctx context.Context, modifier *PriceModifier) error
	Delete(ctx context.Context, id string) error

	// GetByPromoCode returns the promo modifier with the given code
	GetByPromoCode(ctx context.Context, code string) (*PriceModifier, error)

	// ListCandidates returns every published modifier that could apply to
	// the given context in one query: GLOBAL modifiers, ZONE modifiers for
	// any of the zones, SEGMENT modifiers for the segment, PRODUCT
	// modifiers for the product, ATTRIBUTE modifiers for any of the pricing
	// keys and PROMO_CODE modifiers for any of the codes
	ListCandidates(ctx context.Context, params CandidateParams) ([]*PriceModifier, error)

	// IncrementUsage atomically increments the promo usage counter, but
	// only while the counter is below the usage limit. It returns an
	// ErrVersionConflict-marked error when the limit is already reached, so
	// two orders racing for the last redemption can never both succeed.
	IncrementUsage(ctx context.Context, id string) error
}

// CandidateParams carries the resolved pricing context for candidate
// gathering
type CandidateParams struct {
	GeoZoneIDs    []string
	UserSegmentID string
	ProductID     string
	PricingKeys   []string
	PromoCodes    []string
}
