package geozone

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// Repository defines the interface for geo zone data access
type Repository interface {
	Create(ctx context.Context, zone *GeoZone) error
	Get(ctx context.Context, id string) (*GeoZone, error)
	List(ctx context.Context, filter *types.GeoZoneFilter) ([]*GeoZone, error)
	Count(ctx context.Context, filter *types.GeoZoneFilter) (int, error)
	Update(ctx context.Context, zone *GeoZone) error
	Delete(ctx context.Context, id string) error

	// FindByPincode returns the most specific zone whose pincode range
	// covers the given pincode, or a not found error when no zone matches.
	// When several zones cover the same pincode the narrowest range wins.
	FindByPincode(ctx context.Context, pincode string) (*GeoZone, error)
}
