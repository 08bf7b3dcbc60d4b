package service

import (
	"testing"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/geozone"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/testutil"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type GeoZoneServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  GeoZoneService
	testData struct {
		zones struct {
			india      *geozone.GeoZone
			mumbai     *geozone.GeoZone
			delhi      *geozone.GeoZone
			southMumbai *geozone.GeoZone
			restricted *geozone.GeoZone
		}
	}
}

func TestGeoZoneService(t *testing.T) {
	suite.Run(t, new(GeoZoneServiceSuite))
}

func (s *GeoZoneServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *GeoZoneServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *GeoZoneServiceSuite) setupService() {
	s.service = NewGeoZoneService(ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		ProductRepo:       s.GetStores().ProductRepo,
		GeoZoneRepo:       s.GetStores().GeoZoneRepo,
		UserSegmentRepo:   s.GetStores().UserSegmentRepo,
		PriceBookRepo:     s.GetStores().PriceBookRepo,
		AttributeRepo:     s.GetStores().AttributeRepo,
		PriceModifierRepo: s.GetStores().PriceModifierRepo,
		PricingRepo:       s.GetStores().PricingRepo,
		WebhookPublisher:  s.GetWebhookPublisher(),
	})
}

func (s *GeoZoneServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.zones.india = &geozone.GeoZone{
		ID:          "zone_india",
		Name:        "India",
		Code:        "IN",
		PincodeFrom: lo.ToPtr("110001"),
		PincodeTo:   lo.ToPtr("855126"),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.zones.mumbai = &geozone.GeoZone{
		ID:          "zone_mumbai",
		Name:        "Mumbai",
		Code:        "MUM",
		ParentID:    lo.ToPtr("zone_india"),
		PincodeFrom: lo.ToPtr("400001"),
		PincodeTo:   lo.ToPtr("400104"),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.zones.delhi = &geozone.GeoZone{
		ID:           "zone_delhi",
		Name:         "Delhi",
		Code:         "DEL",
		ParentID:     lo.ToPtr("zone_india"),
		IsRestricted: false,
		PincodeFrom:  lo.ToPtr("110001"),
		PincodeTo:    lo.ToPtr("110096"),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.testData.zones.southMumbai = &geozone.GeoZone{
		ID:          "zone_south_mumbai",
		Name:        "South Mumbai",
		Code:        "SMUM",
		ParentID:    lo.ToPtr("zone_mumbai"),
		PincodeFrom: lo.ToPtr("400001"),
		PincodeTo:   lo.ToPtr("400020"),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.zones.restricted = &geozone.GeoZone{
		ID:           "zone_border_area",
		Name:         "Border Area",
		Code:         "BRD",
		ParentID:     lo.ToPtr("zone_india"),
		IsRestricted: true,
		PincodeFrom:  lo.ToPtr("194101"),
		PincodeTo:    lo.ToPtr("194109"),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}

	for _, z := range []*geozone.GeoZone{
		s.testData.zones.india,
		s.testData.zones.mumbai,
		s.testData.zones.delhi,
		s.testData.zones.southMumbai,
		s.testData.zones.restricted,
	} {
		s.NoError(s.GetStores().GeoZoneRepo.Create(s.GetContext(), z))
	}
}

func (s *GeoZoneServiceSuite) TestCreateGeoZone() {
	tests := []struct {
		name      string
		req       dto.CreateGeoZoneRequest
		wantErr   bool
		errString string
	}{
		{
			name: "valid root zone",
			req: dto.CreateGeoZoneRequest{
				Name: "Nepal",
				Code: "NP",
			},
		},
		{
			name: "valid child zone with range",
			req: dto.CreateGeoZoneRequest{
				Name:        "Pune",
				Code:        "PUN",
				ParentID:    lo.ToPtr("zone_india"),
				PincodeFrom: lo.ToPtr("411001"),
				PincodeTo:   lo.ToPtr("411062"),
			},
		},
		{
			name:      "missing name",
			req:       dto.CreateGeoZoneRequest{Code: "XX"},
			wantErr:   true,
			errString: "name is required",
		},
		{
			name:      "missing code",
			req:       dto.CreateGeoZoneRequest{Name: "Nowhere"},
			wantErr:   true,
			errString: "code is required",
		},
		{
			name: "one sided pincode range",
			req: dto.CreateGeoZoneRequest{
				Name:        "Half Range",
				Code:        "HR",
				PincodeFrom: lo.ToPtr("400001"),
			},
			wantErr:   true,
			errString: "pincode range must set both bounds",
		},
		{
			name: "malformed pincode",
			req: dto.CreateGeoZoneRequest{
				Name:        "Bad Range",
				Code:        "BR",
				PincodeFrom: lo.ToPtr("40001"),
				PincodeTo:   lo.ToPtr("400104"),
			},
			wantErr:   true,
			errString: "pincodes must be 6 digit codes",
		},
		{
			name: "inverted range",
			req: dto.CreateGeoZoneRequest{
				Name:        "Backwards",
				Code:        "BW",
				PincodeFrom: lo.ToPtr("400104"),
				PincodeTo:   lo.ToPtr("400001"),
			},
			wantErr:   true,
			errString: "pincode_from must not exceed pincode_to",
		},
		{
			name: "dangling parent",
			req: dto.CreateGeoZoneRequest{
				Name:     "Orphan",
				Code:     "ORP",
				ParentID: lo.ToPtr("zone_missing"),
			},
			wantErr:   true,
			errString: "not found",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateGeoZone(s.GetContext(), tt.req)
			if tt.wantErr {
				s.Error(err)
				if tt.errString != "" {
					s.Contains(err.Error(), tt.errString)
				}
				return
			}
			s.NoError(err)
			s.NotNil(resp)
			s.NotEmpty(resp.ID)
			s.Equal(tt.req.Name, resp.Name)
			s.Equal(tt.req.Code, resp.Code)
		})
	}
}

func (s *GeoZoneServiceSuite) TestGetGeoZone() {
	resp, err := s.service.GetGeoZone(s.GetContext(), "zone_mumbai")
	s.NoError(err)
	s.Equal("Mumbai", resp.Name)
	s.Equal(lo.ToPtr("zone_india"), resp.ParentID)

	_, err = s.service.GetGeoZone(s.GetContext(), "zone_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *GeoZoneServiceSuite) TestListGeoZones() {
	resp, err := s.service.ListGeoZones(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(5, resp.Pagination.Total)

	byParent := types.NewGeoZoneFilter()
	byParent.ParentID = lo.ToPtr("zone_india")
	resp, err = s.service.ListGeoZones(s.GetContext(), byParent)
	s.NoError(err)
	s.Equal(3, resp.Pagination.Total) // mumbai, delhi, border area

	restricted := types.NewGeoZoneFilter()
	restricted.IsRestricted = lo.ToPtr(true)
	resp, err = s.service.ListGeoZones(s.GetContext(), restricted)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("Border Area", resp.Items[0].Name)
}

func (s *GeoZoneServiceSuite) TestUpdateGeoZone() {
	resp, err := s.service.UpdateGeoZone(s.GetContext(), "zone_mumbai", dto.UpdateGeoZoneRequest{
		Name:        lo.ToPtr("Greater Mumbai"),
		PincodeFrom: lo.ToPtr("400001"),
		PincodeTo:   lo.ToPtr("400615"),
	})
	s.NoError(err)
	s.Equal("Greater Mumbai", resp.Name)
	s.Equal(lo.ToPtr("400615"), resp.PincodeTo)

	stored, err := s.GetStores().GeoZoneRepo.Get(s.GetContext(), "zone_mumbai")
	s.NoError(err)
	s.Equal("Greater Mumbai", stored.Name)

	_, err = s.service.UpdateGeoZone(s.GetContext(), "zone_mumbai", dto.UpdateGeoZoneRequest{
		ParentID: lo.ToPtr("zone_mumbai"),
	})
	s.Error(err)
	s.Contains(err.Error(), "zone cannot be its own parent")

	_, err = s.service.UpdateGeoZone(s.GetContext(), "zone_mumbai", dto.UpdateGeoZoneRequest{
		ParentID: lo.ToPtr("zone_missing"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.UpdateGeoZone(s.GetContext(), "zone_missing", dto.UpdateGeoZoneRequest{
		Name: lo.ToPtr("Ghost"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *GeoZoneServiceSuite) TestDeleteGeoZone() {
	s.NoError(s.service.DeleteGeoZone(s.GetContext(), "zone_delhi"))

	_, err := s.service.GetGeoZone(s.GetContext(), "zone_delhi")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	err = s.service.DeleteGeoZone(s.GetContext(), "zone_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *GeoZoneServiceSuite) TestResolveChain() {
	tests := []struct {
		name      string
		pincode   string
		wantChain []string
		errString string
	}{
		{
			// 400001 sits inside south mumbai, mumbai and india; the
			// narrowest range wins and the chain walks up from there
			name:      "narrowest zone wins and chain walks to the root",
			pincode:   "400001",
			wantChain: []string{"zone_south_mumbai", "zone_mumbai", "zone_india"},
		},
		{
			name:      "pincode outside the nested child",
			pincode:   "400050",
			wantChain: []string{"zone_mumbai", "zone_india"},
		},
		{
			name:      "pincode matching only the root",
			pincode:   "500001",
			wantChain: []string{"zone_india"},
		},
		{
			name:      "unknown pincode",
			pincode:   "999999",
			errString: "location not serviceable",
		},
		{
			name:      "restricted zone",
			pincode:   "194105",
			errString: "location not serviceable",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			chain, err := s.service.ResolveChain(s.GetContext(), tt.pincode)
			if tt.errString != "" {
				s.Error(err)
				s.Contains(err.Error(), tt.errString)
				return
			}
			s.NoError(err)

			got := lo.Map(chain, func(z *geozone.GeoZone, _ int) string {
				return z.ID
			})
			s.Equal(tt.wantChain, got)
		})
	}
}

func (s *GeoZoneServiceSuite) TestResolveChainDetectsCycle() {
	ctx := s.GetContext()

	// Wire a cycle directly through the repository; the service layer
	// rejects self-parenting, but a two-zone loop can still be edited in
	zoneA := &geozone.GeoZone{
		ID:          "zone_loop_a",
		Name:        "Loop A",
		Code:        "LPA",
		PincodeFrom: lo.ToPtr("900001"),
		PincodeTo:   lo.ToPtr("900010"),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	zoneB := &geozone.GeoZone{
		ID:        "zone_loop_b",
		Name:      "Loop B",
		Code:      "LPB",
		ParentID:  lo.ToPtr("zone_loop_a"),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().GeoZoneRepo.Create(ctx, zoneA))
	s.NoError(s.GetStores().GeoZoneRepo.Create(ctx, zoneB))

	zoneA.ParentID = lo.ToPtr("zone_loop_b")
	s.NoError(s.GetStores().GeoZoneRepo.Update(ctx, zoneA))

	_, err := s.service.ResolveChain(ctx, "900005")
	s.Error(err)
	s.Contains(err.Error(), "zone chain depth exceeded")
}
