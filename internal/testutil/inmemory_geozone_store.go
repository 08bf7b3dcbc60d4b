package testutil

import (
	"context"
	"math"
	"strconv"

	"github.com/printprice/printprice/internal/domain/geozone"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// InMemoryGeoZoneStore implements geozone.Repository
type InMemoryGeoZoneStore struct {
	*InMemoryStore[*geozone.GeoZone]
}

func NewInMemoryGeoZoneStore() *InMemoryGeoZoneStore {
	return &InMemoryGeoZoneStore{
		InMemoryStore: NewInMemoryStore[*geozone.GeoZone](),
	}
}

func copyGeoZone(z *geozone.GeoZone) *geozone.GeoZone {
	if z == nil {
		return nil
	}
	copied := *z
	return &copied
}

func (s *InMemoryGeoZoneStore) Create(ctx context.Context, z *geozone.GeoZone) error {
	if z == nil {
		return ierr.NewError("geo zone cannot be nil").
			WithHint("Geo zone cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, z.ID, copyGeoZone(z))
}

func (s *InMemoryGeoZoneStore) Get(ctx context.Context, id string) (*geozone.GeoZone, error) {
	z, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("geo zone not found").
			WithHintf("Geo zone with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyGeoZone(z), nil
}

func (s *InMemoryGeoZoneStore) List(ctx context.Context, filter *types.GeoZoneFilter) ([]*geozone.GeoZone, error) {
	items, err := s.InMemoryStore.List(ctx, filter, geoZoneFilterFn, geoZoneSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(z *geozone.GeoZone, _ int) *geozone.GeoZone {
		return copyGeoZone(z)
	}), nil
}

func (s *InMemoryGeoZoneStore) Count(ctx context.Context, filter *types.GeoZoneFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, geoZoneFilterFn)
}

func (s *InMemoryGeoZoneStore) Update(ctx context.Context, z *geozone.GeoZone) error {
	if z == nil {
		return ierr.NewError("geo zone cannot be nil").
			WithHint("Geo zone cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, z.ID, copyGeoZone(z))
}

func (s *InMemoryGeoZoneStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

// FindByPincode mirrors the narrowest range wins semantics of the postgres
// repository: among all published zones whose range covers the pincode, pick
// the one spanning the fewest codes, then the lowest ID on ties.
func (s *InMemoryGeoZoneStore) FindByPincode(ctx context.Context, pincode string) (*geozone.GeoZone, error) {
	zones, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, z *geozone.GeoZone, _ interface{}) bool {
		return z != nil &&
			z.TenantID == types.GetTenantID(ctx) &&
			z.Status == types.StatusPublished &&
			z.ContainsPincode(pincode)
	}, nil)
	if err != nil {
		return nil, err
	}

	var best *geozone.GeoZone
	bestWidth := int64(-1)
	for _, z := range zones {
		width := pincodeRangeWidth(z)
		if best == nil || width < bestWidth || (width == bestWidth && z.ID < best.ID) {
			best = z
			bestWidth = width
		}
	}

	if best == nil {
		return nil, ierr.NewError("no geo zone covers pincode").
			WithHintf("No serviceable zone covers pincode %s", pincode).
			WithReportableDetails(map[string]any{
				"pincode": pincode,
			}).
			Mark(ierr.ErrNotFound)
	}

	return copyGeoZone(best), nil
}

func pincodeRangeWidth(z *geozone.GeoZone) int64 {
	if z.PincodeFrom == nil || z.PincodeTo == nil {
		return math.MaxInt64
	}
	from, err1 := strconv.ParseInt(*z.PincodeFrom, 10, 64)
	to, err2 := strconv.ParseInt(*z.PincodeTo, 10, 64)
	if err1 != nil || err2 != nil {
		return math.MaxInt64
	}
	return to - from
}

func geoZoneFilterFn(ctx context.Context, z *geozone.GeoZone, filter interface{}) bool {
	if z == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && z.TenantID != tenantID {
		return false
	}

	f, ok := filter.(*types.GeoZoneFilter)
	if !ok || f == nil {
		return z.Status == types.StatusPublished
	}

	if z.Status != types.StatusPublished {
		return false
	}

	if f.ParentID != nil {
		if z.ParentID == nil || *z.ParentID != *f.ParentID {
			return false
		}
	}

	if f.IsRestricted != nil && z.IsRestricted != *f.IsRestricted {
		return false
	}

	return true
}

func geoZoneSortFn(i, j *geozone.GeoZone) bool {
	return i.CreatedAt.After(j.CreatedAt)
}
