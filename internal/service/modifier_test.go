package service

import (
	"testing"
	"time"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/modifier"
	"github.com/printprice/printprice/internal/domain/product"
	"github.com/printprice/printprice/internal/domain/segment"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/testutil"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PriceModifierServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PriceModifierService
	testData struct {
		product  *product.Product
		zone     *geozone.GeoZone
		segment  *segment.UserSegment
		existing struct {
			fuel    *modifier.PriceModifier
			vip     *modifier.PriceModifier
			premium *modifier.PriceModifier
			diwali  *modifier.PriceModifier
		}
	}
}

func TestPriceModifierService(t *testing.T) {
	suite.Run(t, new(PriceModifierServiceSuite))
}

func (s *PriceModifierServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *PriceModifierServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *PriceModifierServiceSuite) setupService() {
	s.service = NewPriceModifierService(ServiceParams{
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

func (s *PriceModifierServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.product = &product.Product{
		ID:            "prod_cards",
		Name:          "Business Cards",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ProductRepo.Create(ctx, s.testData.product))

	s.testData.zone = &geozone.GeoZone{
		ID:        "zone_india",
		Name:      "India",
		Code:      "IN",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().GeoZoneRepo.Create(ctx, s.testData.zone))

	s.testData.segment = &segment.UserSegment{
		ID:        "seg_vip",
		Code:      "VIP",
		Name:      "VIP Customers",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().UserSegmentRepo.Create(ctx, s.testData.segment))

	now := time.Now().UTC()
	s.testData.existing.fuel = &modifier.PriceModifier{
		ID:           "mod_india_fuel",
		Name:         "India fuel surcharge",
		AppliesTo:    types.ModifierScopeZone,
		ModifierType: types.ModifierTypePercentInc,
		Value:        decimal.NewFromInt(5),
		Priority:     3,
		GeoZoneID:    lo.ToPtr("zone_india"),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.testData.existing.vip = &modifier.PriceModifier{
		ID:            "mod_vip_discount",
		Name:          "VIP tier discount",
		AppliesTo:     types.ModifierScopeSegment,
		ModifierType:  types.ModifierTypePercentDec,
		Value:         decimal.NewFromInt(10),
		Priority:      1,
		UserSegmentID: lo.ToPtr("seg_vip"),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.existing.premium = &modifier.PriceModifier{
		ID:           "mod_cards_premium",
		Name:         "Premium card stock",
		AppliesTo:    types.ModifierScopeProduct,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(50),
		Priority:     2,
		ProductID:    lo.ToPtr("prod_cards"),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	s.testData.existing.diwali = &modifier.PriceModifier{
		ID:           "mod_promo_diwali",
		Name:         "Diwali sale",
		AppliesTo:    types.ModifierScopePromoCode,
		ModifierType: types.ModifierTypePercentDec,
		Value:        decimal.NewFromInt(20),
		Priority:     5,
		PromoCode:    lo.ToPtr("DIWALI20"),
		UsageLimit:   lo.ToPtr(100),
		UsedCount:    40,
		ValidFrom:    lo.ToPtr(now.Add(-30 * 24 * time.Hour)),
		ValidUntil:   lo.ToPtr(now.Add(30 * 24 * time.Hour)),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	for _, m := range []*modifier.PriceModifier{
		s.testData.existing.fuel,
		s.testData.existing.vip,
		s.testData.existing.premium,
		s.testData.existing.diwali,
	} {
		s.NoError(s.GetStores().PriceModifierRepo.Create(ctx, m))
	}
}

func (s *PriceModifierServiceSuite) TestCreatePriceModifier() {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		req       dto.CreatePriceModifierRequest
		wantErr   bool
		errString string
	}{
		{
			name: "valid global surcharge",
			req: dto.CreatePriceModifierRequest{
				Name:         "Monsoon surcharge",
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(2),
				Priority:     10,
			},
		},
		{
			name: "valid zone modifier",
			req: dto.CreatePriceModifierRequest{
				Name:         "India logistics",
				AppliesTo:    types.ModifierScopeZone,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(25),
				GeoZoneID:    lo.ToPtr("zone_india"),
			},
		},
		{
			name: "valid segment modifier",
			req: dto.CreatePriceModifierRequest{
				Name:          "VIP welcome",
				AppliesTo:     types.ModifierScopeSegment,
				ModifierType:  types.ModifierTypePercentDec,
				Value:         decimal.NewFromInt(5),
				UserSegmentID: lo.ToPtr("seg_vip"),
			},
		},
		{
			name: "valid attribute modifier",
			req: dto.CreatePriceModifierRequest{
				Name:         "Heavy stock handling",
				AppliesTo:    types.ModifierScopeAttribute,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(40),
				PricingKey:   lo.ToPtr("paper_gsm_700"),
			},
		},
		{
			name: "valid promo code",
			req: dto.CreatePriceModifierRequest{
				Name:         "Flash sale",
				AppliesTo:    types.ModifierScopePromoCode,
				ModifierType: types.ModifierTypePercentDec,
				Value:        decimal.NewFromInt(50),
				PromoCode:    lo.ToPtr("FLASH50"),
				UsageLimit:   lo.ToPtr(10),
				ValidFrom:    lo.ToPtr(now),
				ValidUntil:   lo.ToPtr(now.Add(24 * time.Hour)),
			},
		},
		{
			name: "missing name",
			req: dto.CreatePriceModifierRequest{
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(2),
			},
			wantErr:   true,
			errString: "name is required",
		},
		{
			name: "negative value",
			req: dto.CreatePriceModifierRequest{
				Name:         "Backwards discount",
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(-10),
			},
			wantErr:   true,
			errString: "value must not be negative",
		},
		{
			name: "invalid scope",
			req: dto.CreatePriceModifierRequest{
				Name:         "Martian pricing",
				AppliesTo:    types.ModifierScope("PLANET"),
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(2),
			},
			wantErr:   true,
			errString: "invalid modifier scope",
		},
		{
			name: "invalid modifier type",
			req: dto.CreatePriceModifierRequest{
				Name:         "Mystery math",
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierType("SQUARE"),
				Value:        decimal.NewFromInt(2),
			},
			wantErr:   true,
			errString: "invalid modifier type",
		},
		{
			name: "zone scope without zone",
			req: dto.CreatePriceModifierRequest{
				Name:         "Nowhere surcharge",
				AppliesTo:    types.ModifierScopeZone,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(5),
			},
			wantErr:   true,
			errString: "missing scope discriminator",
		},
		{
			name: "global scope with product",
			req: dto.CreatePriceModifierRequest{
				Name:         "Confused scope",
				AppliesTo:    types.ModifierScopeGlobal,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(5),
				ProductID:    lo.ToPtr("prod_cards"),
			},
			wantErr:   true,
			errString: "unexpected scope discriminator",
		},
		{
			name: "usage limit on non promo",
			req: dto.CreatePriceModifierRequest{
				Name:         "Limited surcharge",
				AppliesTo:    types.ModifierScopeProduct,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(50),
				ProductID:    lo.ToPtr("prod_cards"),
				UsageLimit:   lo.ToPtr(5),
			},
			wantErr:   true,
			errString: "usage and validity fields are promo-only",
		},
		{
			name: "zero usage limit",
			req: dto.CreatePriceModifierRequest{
				Name:         "Dead on arrival",
				AppliesTo:    types.ModifierScopePromoCode,
				ModifierType: types.ModifierTypePercentDec,
				Value:        decimal.NewFromInt(10),
				PromoCode:    lo.ToPtr("NEVER"),
				UsageLimit:   lo.ToPtr(0),
			},
			wantErr:   true,
			errString: "usage limit must be positive",
		},
		{
			name: "inverted validity window",
			req: dto.CreatePriceModifierRequest{
				Name:         "Time traveller",
				AppliesTo:    types.ModifierScopePromoCode,
				ModifierType: types.ModifierTypePercentDec,
				Value:        decimal.NewFromInt(10),
				PromoCode:    lo.ToPtr("PARADOX"),
				ValidFrom:    lo.ToPtr(now),
				ValidUntil:   lo.ToPtr(now.Add(-time.Hour)),
			},
			wantErr:   true,
			errString: "invalid validity window",
		},
		{
			name: "dangling zone",
			req: dto.CreatePriceModifierRequest{
				Name:         "Ghost zone surcharge",
				AppliesTo:    types.ModifierScopeZone,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(5),
				GeoZoneID:    lo.ToPtr("zone_missing"),
			},
			wantErr:   true,
			errString: "not found",
		},
		{
			name: "dangling segment",
			req: dto.CreatePriceModifierRequest{
				Name:          "Ghost segment discount",
				AppliesTo:     types.ModifierScopeSegment,
				ModifierType:  types.ModifierTypePercentDec,
				Value:         decimal.NewFromInt(5),
				UserSegmentID: lo.ToPtr("seg_missing"),
			},
			wantErr:   true,
			errString: "not found",
		},
		{
			name: "dangling product",
			req: dto.CreatePriceModifierRequest{
				Name:         "Ghost product surcharge",
				AppliesTo:    types.ModifierScopeProduct,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(50),
				ProductID:    lo.ToPtr("prod_missing"),
			},
			wantErr:   true,
			errString: "not found",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreatePriceModifier(s.GetContext(), tt.req)
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
			s.Equal(tt.req.AppliesTo, resp.AppliesTo)
			s.Equal(0, resp.UsedCount)
		})
	}
}

func (s *PriceModifierServiceSuite) TestGetPriceModifier() {
	resp, err := s.service.GetPriceModifier(s.GetContext(), "mod_promo_diwali")
	s.NoError(err)
	s.Equal("Diwali sale", resp.Name)
	s.Equal(lo.ToPtr("DIWALI20"), resp.PromoCode)
	s.Equal(40, resp.UsedCount)

	_, err = s.service.GetPriceModifier(s.GetContext(), "mod_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceModifierServiceSuite) TestListPriceModifiers() {
	resp, err := s.service.ListPriceModifiers(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(4, resp.Pagination.Total)
	// Priority order, lowest first
	s.Equal("mod_vip_discount", resp.Items[0].ID)
	s.Equal("mod_cards_premium", resp.Items[1].ID)
	s.Equal("mod_india_fuel", resp.Items[2].ID)
	s.Equal("mod_promo_diwali", resp.Items[3].ID)

	byScope := types.NewPriceModifierFilter()
	byScope.Scopes = []types.ModifierScope{types.ModifierScopePromoCode}
	resp, err = s.service.ListPriceModifiers(s.GetContext(), byScope)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("mod_promo_diwali", resp.Items[0].ID)

	byProduct := types.NewPriceModifierFilter()
	byProduct.ProductID = lo.ToPtr("prod_cards")
	resp, err = s.service.ListPriceModifiers(s.GetContext(), byProduct)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)

	byZone := types.NewPriceModifierFilter()
	byZone.GeoZoneIDs = []string{"zone_india"}
	resp, err = s.service.ListPriceModifiers(s.GetContext(), byZone)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("mod_india_fuel", resp.Items[0].ID)

	byCode := types.NewPriceModifierFilter()
	byCode.PromoCodes = []string{"DIWALI20", "UNKNOWN"}
	resp, err = s.service.ListPriceModifiers(s.GetContext(), byCode)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
}

func (s *PriceModifierServiceSuite) TestUpdatePriceModifier() {
	resp, err := s.service.UpdatePriceModifier(s.GetContext(), "mod_india_fuel", dto.UpdatePriceModifierRequest{
		Name:     lo.ToPtr("India fuel and logistics"),
		Value:    lo.ToPtr(decimal.NewFromFloat(7.5)),
		Priority: lo.ToPtr(4),
	})
	s.NoError(err)
	s.Equal("India fuel and logistics", resp.Name)
	s.True(resp.Value.Equal(decimal.NewFromFloat(7.5)))
	s.Equal(4, resp.Priority)

	// Extending a promo window keeps the promo valid
	newUntil := time.Now().UTC().Add(60 * 24 * time.Hour)
	resp, err = s.service.UpdatePriceModifier(s.GetContext(), "mod_promo_diwali", dto.UpdatePriceModifierRequest{
		ValidUntil: lo.ToPtr(newUntil),
	})
	s.NoError(err)
	s.True(resp.ValidUntil.Equal(newUntil))

	_, err = s.service.UpdatePriceModifier(s.GetContext(), "mod_india_fuel", dto.UpdatePriceModifierRequest{
		Name: lo.ToPtr(""),
	})
	s.Error(err)
	s.Contains(err.Error(), "name must not be empty")

	_, err = s.service.UpdatePriceModifier(s.GetContext(), "mod_india_fuel", dto.UpdatePriceModifierRequest{
		Value: lo.ToPtr(decimal.NewFromInt(-5)),
	})
	s.Error(err)
	s.Contains(err.Error(), "value must not be negative")

	_, err = s.service.UpdatePriceModifier(s.GetContext(), "mod_india_fuel", dto.UpdatePriceModifierRequest{
		Priority: lo.ToPtr(-1),
	})
	s.Error(err)
	s.Contains(err.Error(), "priority must be non-negative")

	// Promo-only fields stay promo-only through updates
	_, err = s.service.UpdatePriceModifier(s.GetContext(), "mod_cards_premium", dto.UpdatePriceModifierRequest{
		UsageLimit: lo.ToPtr(5),
	})
	s.Error(err)
	s.Contains(err.Error(), "usage and validity fields are promo-only")

	_, err = s.service.UpdatePriceModifier(s.GetContext(), "mod_missing", dto.UpdatePriceModifierRequest{
		Name: lo.ToPtr("Ghost"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceModifierServiceSuite) TestDeletePriceModifier() {
	s.NoError(s.service.DeletePriceModifier(s.GetContext(), "mod_india_fuel"))

	_, err := s.service.GetPriceModifier(s.GetContext(), "mod_india_fuel")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	err = s.service.DeletePriceModifier(s.GetContext(), "mod_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
