package service

import (
	"context"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/geozone"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
)

// GeoZoneService defines the interface for geo zone operations
type GeoZoneService interface {
	CreateGeoZone(ctx context.Context, req dto.CreateGeoZoneRequest) (*dto.GeoZoneResponse, error)
	GetGeoZone(ctx context.Context, id string) (*dto.GeoZoneResponse, error)
	ListGeoZones(ctx context.Context, filter *types.GeoZoneFilter) (*dto.ListGeoZonesResponse, error)
	UpdateGeoZone(ctx context.Context, id string, req dto.UpdateGeoZoneRequest) (*dto.GeoZoneResponse, error)
	DeleteGeoZone(ctx context.Context, id string) error

	// ResolveChain resolves a pincode to its zone chain, ordered most
	// specific zone first up to the root. A pincode outside every zone or
	// inside a restricted zone resolves to a location-not-serviceable error.
	ResolveChain(ctx context.Context, pincode string) ([]*geozone.GeoZone, error)
}

type geoZoneService struct {
	ServiceParams
}

// NewGeoZoneService creates a new geo zone service
func NewGeoZoneService(params ServiceParams) GeoZoneService {
	return &geoZoneService{
		ServiceParams: params,
	}
}

// CreateGeoZone creates a new geo zone
func (s *geoZoneService) CreateGeoZone(ctx context.Context, req dto.CreateGeoZoneRequest) (*dto.GeoZoneResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// A dangling parent would silently break chain resolution for every
	// pincode under this zone
	if req.ParentID != nil {
		if _, err := s.GeoZoneRepo.Get(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	zone := req.ToGeoZone(types.GetDefaultBaseModel(ctx))

	if err := s.GeoZoneRepo.Create(ctx, zone); err != nil {
		return nil, err
	}

	return &dto.GeoZoneResponse{GeoZone: zone}, nil
}

// GetGeoZone retrieves a geo zone by ID
func (s *geoZoneService) GetGeoZone(ctx context.Context, id string) (*dto.GeoZoneResponse, error) {
	zone, err := s.GeoZoneRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.GeoZoneResponse{GeoZone: zone}, nil
}

// ListGeoZones lists geo zones matching the filter
func (s *geoZoneService) ListGeoZones(ctx context.Context, filter *types.GeoZoneFilter) (*dto.ListGeoZonesResponse, error) {
	if filter == nil {
		filter = types.NewGeoZoneFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	zones, err := s.GeoZoneRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.GeoZoneRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.GeoZoneResponse, len(zones))
	for i, zone := range zones {
		items[i] = &dto.GeoZoneResponse{GeoZone: zone}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdateGeoZone updates an existing geo zone
func (s *geoZoneService) UpdateGeoZone(ctx context.Context, id string, req dto.UpdateGeoZoneRequest) (*dto.GeoZoneResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	zone, err := s.GeoZoneRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, ierr.NewError("zone cannot be its own parent").
				WithHint("Please provide a different parent zone").
				Mark(ierr.ErrValidation)
		}
		if _, err := s.GeoZoneRepo.Get(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		zone.ParentID = req.ParentID
	}
	if req.Name != nil {
		zone.Name = *req.Name
	}
	if req.IsRestricted != nil {
		zone.IsRestricted = *req.IsRestricted
	}
	if req.WarehouseCode != nil {
		zone.WarehouseCode = req.WarehouseCode
	}
	if req.Currency != nil {
		zone.Currency = req.Currency
	}
	if req.PincodeFrom != nil {
		zone.PincodeFrom = req.PincodeFrom
	}
	if req.PincodeTo != nil {
		zone.PincodeTo = req.PincodeTo
	}

	if err := s.GeoZoneRepo.Update(ctx, zone); err != nil {
		return nil, err
	}

	return &dto.GeoZoneResponse{GeoZone: zone}, nil
}

// DeleteGeoZone soft deletes a geo zone
func (s *geoZoneService) DeleteGeoZone(ctx context.Context, id string) error {
	if _, err := s.GeoZoneRepo.Get(ctx, id); err != nil {
		return err
	}

	return s.GeoZoneRepo.Delete(ctx, id)
}

// ResolveChain finds the most specific zone covering the pincode and walks
// parent links to the root. The walk is depth capped: a chain longer than
// geozone.MaxChainDepth means the zone tree has a cycle and resolution fails
// instead of looping.
func (s *geoZoneService) ResolveChain(ctx context.Context, pincode string) ([]*geozone.GeoZone, error) {
	zone, err := s.GeoZoneRepo.FindByPincode(ctx, pincode)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, locationNotServiceable(pincode, "no zone covers this pincode")
		}
		return nil, err
	}

	if zone.IsRestricted {
		return nil, locationNotServiceable(pincode, "deliveries to this zone are restricted")
	}

	chain := []*geozone.GeoZone{zone}
	current := zone
	for current.ParentID != nil {
		if len(chain) >= geozone.MaxChainDepth {
			return nil, ierr.NewError("zone chain depth exceeded").
				WithHintf("Zone chain for pincode %s exceeds depth %d, the zone tree likely has a cycle", pincode, geozone.MaxChainDepth).
				WithReportableDetails(map[string]any{
					"pincode":     pincode,
					"geo_zone_id": zone.ID,
				}).
				Mark(ierr.ErrSystem)
		}

		parent, err := s.GeoZoneRepo.Get(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}

		chain = append(chain, parent)
		current = parent
	}

	return chain, nil
}

func locationNotServiceable(pincode string, reason string) error {
	return ierr.NewError("location not serviceable").
		WithHintf("We cannot deliver to pincode %s: %s", pincode, reason).
		WithReportableDetails(map[string]any{
			"pincode": pincode,
		}).
		Mark(ierr.ErrNotFound)
}
