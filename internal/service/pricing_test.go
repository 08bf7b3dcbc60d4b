package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/attribute"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/modifier"
	"github.com/printprice/printprice/internal/domain/pricebook"
	"github.com/printprice/printprice/internal/domain/pricing"
	"github.com/printprice/printprice/internal/domain/product"
	"github.com/printprice/printprice/internal/domain/segment"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/testutil"
	"github.com/printprice/printprice/internal/types"
	webhookDto "github.com/printprice/printprice/internal/webhook/dto"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PricingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PricingService
	testData struct {
		products struct {
			businessCards *product.Product // 500/unit, 18% GST exclusive
			poster        *product.Product // 1000/unit
			canvas        *product.Product // 1000/unit
			photoFrame    *product.Product // 499/unit, 18% GST inclusive
			flyers        *product.Product // 2500 per 100-500 range
		}
		zones struct {
			india  *geozone.GeoZone
			mumbai *geozone.GeoZone
			delhi  *geozone.GeoZone
		}
		segments struct {
			retail *segment.UserSegment
			vip    *segment.UserSegment
		}
		book    *pricebook.PriceBook
		entries struct {
			businessCards *pricebook.PriceBookEntry
			poster        *pricebook.PriceBookEntry
			canvas        *pricebook.PriceBookEntry
			photoFrame    *pricebook.PriceBookEntry
			flyers        *pricebook.PriceBookEntry
		}
		attributes struct {
			paperGSM *attribute.AttributeType
			gsm350   *attribute.AttributeValue
			gsm700   *attribute.AttributeValue
		}
	}
}

func TestPricingService(t *testing.T) {
	suite.Run(t, new(PricingServiceSuite))
}

func (s *PricingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *PricingServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *PricingServiceSuite) setupService() {
	s.service = NewPricingService(ServiceParams{
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

func (s *PricingServiceSuite) setupTestData() {
	ctx := s.GetContext()

	// Products
	s.testData.products.businessCards = &product.Product{
		ID:            "prod_business_cards",
		Name:          "Business Cards 350gsm",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.poster = &product.Product{
		ID:            "prod_poster",
		Name:          "A2 Poster",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.canvas = &product.Product{
		ID:            "prod_canvas",
		Name:          "Canvas Print",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.photoFrame = &product.Product{
		ID:                    "prod_photo_frame",
		Name:                  "Photo Frame",
		GSTPercentage:         decimal.NewFromInt(18),
		ShowPriceIncludingGST: true,
		BaseModel:             types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.flyers = &product.Product{
		ID:            "prod_flyers",
		Name:          "A5 Flyers",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	for _, p := range []*product.Product{
		s.testData.products.businessCards,
		s.testData.products.poster,
		s.testData.products.canvas,
		s.testData.products.photoFrame,
		s.testData.products.flyers,
	} {
		s.NoError(s.GetStores().ProductRepo.Create(ctx, p))
	}

	// Zone tree: india covers the national pincode space, mumbai and delhi
	// are narrower children so they win resolution inside their ranges
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
		ID:          "zone_delhi",
		Name:        "Delhi",
		Code:        "DEL",
		ParentID:    lo.ToPtr("zone_india"),
		PincodeFrom: lo.ToPtr("110001"),
		PincodeTo:   lo.ToPtr("110096"),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	for _, z := range []*geozone.GeoZone{s.testData.zones.india, s.testData.zones.mumbai, s.testData.zones.delhi} {
		s.NoError(s.GetStores().GeoZoneRepo.Create(ctx, z))
	}

	// Segments: RETAIL is the guest fallback, VIP carries one assigned user
	s.testData.segments.retail = &segment.UserSegment{
		ID:        "seg_retail",
		Code:      "RETAIL",
		Name:      "Retail",
		IsDefault: true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.testData.segments.vip = &segment.UserSegment{
		ID:        "seg_vip",
		Code:      "VIP",
		Name:      "VIP",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().UserSegmentRepo.Create(ctx, s.testData.segments.retail))
	s.NoError(s.GetStores().UserSegmentRepo.Create(ctx, s.testData.segments.vip))
	s.NoError(s.GetStores().UserSegmentRepo.AssignUser(ctx, "user_vip", "seg_vip"))

	// One default INR book holding every entry
	s.testData.book = &pricebook.PriceBook{
		ID:        "pb_default_inr",
		Name:      "India Default",
		Currency:  "INR",
		IsDefault: true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PriceBookRepo.Create(ctx, s.testData.book))

	s.testData.entries.businessCards = &pricebook.PriceBookEntry{
		ID:          "pbe_business_cards",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_business_cards",
		BasePrice:   decimal.NewFromInt(500),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.poster = &pricebook.PriceBookEntry{
		ID:          "pbe_poster",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_poster",
		BasePrice:   decimal.NewFromInt(1000),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.canvas = &pricebook.PriceBookEntry{
		ID:          "pbe_canvas",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_canvas",
		BasePrice:   decimal.NewFromInt(1000),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.photoFrame = &pricebook.PriceBookEntry{
		ID:          "pbe_photo_frame",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_photo_frame",
		BasePrice:   decimal.NewFromInt(499),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.flyers = &pricebook.PriceBookEntry{
		ID:          "pbe_flyers",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_flyers",
		BasePrice:   decimal.NewFromInt(2500),
		MinQuantity: 100,
		MaxQuantity: lo.ToPtr(500),
		PriceKind:   types.PriceKindRangeTotal,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	for _, e := range []*pricebook.PriceBookEntry{
		s.testData.entries.businessCards,
		s.testData.entries.poster,
		s.testData.entries.canvas,
		s.testData.entries.photoFrame,
		s.testData.entries.flyers,
	} {
		s.NoError(s.GetStores().PriceBookRepo.CreateEntry(ctx, e))
	}

	// Paper GSM attribute with two priced values
	s.testData.attributes.paperGSM = &attribute.AttributeType{
		ID:          "attr_paper_gsm",
		Name:        "paper_gsm",
		DisplayName: "Paper GSM",
		InputType:   types.AttributeInputTypeSelect,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().AttributeRepo.CreateType(ctx, s.testData.attributes.paperGSM))

	s.testData.attributes.gsm350 = &attribute.AttributeValue{
		ID:              "attrval_gsm_350",
		AttributeTypeID: "attr_paper_gsm",
		Value:           "350",
		DisplayLabel:    "350 GSM",
		PricingKey:      "paper_gsm_350",
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.testData.attributes.gsm700 = &attribute.AttributeValue{
		ID:              "attrval_gsm_700",
		AttributeTypeID: "attr_paper_gsm",
		Value:           "700",
		DisplayLabel:    "700 GSM",
		PricingKey:      "paper_gsm_700",
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().AttributeRepo.CreateValue(ctx, s.testData.attributes.gsm350))
	s.NoError(s.GetStores().AttributeRepo.CreateValue(ctx, s.testData.attributes.gsm700))
}

func (s *PricingServiceSuite) createModifier(m *modifier.PriceModifier) *modifier.PriceModifier {
	m.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	s.NoError(s.GetStores().PriceModifierRepo.Create(s.GetContext(), m))
	return m
}

func (s *PricingServiceSuite) TestResolvePriceValidation() {
	tests := []struct {
		name      string
		req       dto.PricingRequest
		errString string
	}{
		{
			name:      "missing product id",
			req:       dto.PricingRequest{Pincode: "400001", Quantity: 1},
			errString: "product_id is required",
		},
		{
			name:      "invalid pincode",
			req:       dto.PricingRequest{ProductID: "prod_business_cards", Pincode: "40", Quantity: 1},
			errString: "pincode must be a 6 digit code",
		},
		{
			name:      "zero quantity",
			req:       dto.PricingRequest{ProductID: "prod_business_cards", Pincode: "400001"},
			errString: "quantity must be at least 1",
		},
		{
			name: "empty promo code",
			req: dto.PricingRequest{
				ProductID:  "prod_business_cards",
				Pincode:    "400001",
				Quantity:   1,
				PromoCodes: []string{""},
			},
			errString: "promo codes must not be empty",
		},
		{
			name: "negative expected total",
			req: dto.PricingRequest{
				ProductID:     "prod_business_cards",
				Pincode:       "400001",
				Quantity:      1,
				ExpectedTotal: lo.ToPtr(decimal.NewFromInt(-1)),
			},
			errString: "expected_total must not be negative",
		},
		{
			name:      "unknown product",
			req:       dto.PricingRequest{ProductID: "prod_missing", Pincode: "400001", Quantity: 1},
			errString: "not found",
		},
		{
			name:      "pincode outside every zone",
			req:       dto.PricingRequest{ProductID: "prod_business_cards", Pincode: "999999", Quantity: 1},
			errString: "location not serviceable",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.service.ResolvePrice(s.GetContext(), tt.req)
			s.Error(err)
			s.Nil(result)
			s.Contains(err.Error(), tt.errString)
		})
	}
}

func (s *PricingServiceSuite) TestResolvePriceWithoutModifiers() {
	result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID: "prod_business_cards",
		Pincode:   "400001",
		Quantity:  10,
	})
	s.NoError(err)
	s.NotNil(result)

	s.True(result.BasePrice.Equal(decimal.NewFromInt(500)))
	s.True(result.UnitPrice.Equal(decimal.NewFromInt(500)))
	s.Equal(10, result.Quantity)
	s.True(result.Subtotal.Equal(decimal.NewFromInt(5000)))
	s.True(result.GSTAmount.Equal(decimal.NewFromInt(900))) // 18% of 5000
	s.True(result.TotalPayable.Equal(decimal.NewFromInt(5900)))
	s.Equal("INR", result.Currency)
	s.Equal("₹5900.00", result.DisplayTotal)
	s.Empty(result.AppliedModifiers)
	s.Equal([]string{"zone_mumbai", "zone_india"}, result.ZoneChain)
	s.Equal("RETAIL", result.SegmentCode) // guest request falls back to the default segment
	s.False(result.CalculatedAt.IsZero())
}

func (s *PricingServiceSuite) TestResolvePriceIsDeterministic() {
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_vip_discount",
		Name:         "VIP tier discount",
		AppliesTo:    types.ModifierScopeSegment,
		ModifierType: types.ModifierTypePercentDec,
		Value:        decimal.NewFromInt(5),
		Priority:     1,
		UserSegmentID: lo.ToPtr("seg_vip"),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_cards_premium",
		Name:         "Premium stock surcharge",
		AppliesTo:    types.ModifierScopeProduct,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(15),
		Priority:     1,
		ProductID:    lo.ToPtr("prod_business_cards"),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_india_fuel",
		Name:         "Fuel surcharge",
		AppliesTo:    types.ModifierScopeZone,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(30),
		Priority:     2,
		GeoZoneID:    lo.ToPtr("zone_india"),
	})

	req := dto.PricingRequest{
		UserID:    "user_vip",
		ProductID: "prod_business_cards",
		Pincode:   "400001",
		Quantity:  4,
	}

	first, err := s.service.ResolvePrice(s.GetContext(), req)
	s.NoError(err)
	second, err := s.service.ResolvePrice(s.GetContext(), req)
	s.NoError(err)

	s.True(first.UnitPrice.Equal(second.UnitPrice))
	s.True(first.TotalPayable.Equal(second.TotalPayable))

	stepIDs := func(result *dto.PricingResult) []string {
		return lo.Map(result.AppliedModifiers, func(step pricing.AppliedModifier, _ int) string {
			return step.ModifierID
		})
	}

	// Equal priorities break on scope precedence: SEGMENT before PRODUCT,
	// then the priority 2 ZONE modifier
	want := []string{"mod_vip_discount", "mod_cards_premium", "mod_india_fuel"}
	s.Equal(want, stepIDs(first))
	s.Equal(want, stepIDs(second))
}

func (s *PricingServiceSuite) TestModifierApplicationOrdering() {
	// 1000 +10% then +50 = 1150; 1000 +50 then +10% = 1155. Priority decides
	// which sequence runs, so the same pair of modifiers yields different
	// totals.
	tests := []struct {
		name            string
		productID       string
		percentPriority int
		flatPriority    int
		want            decimal.Decimal
	}{
		{
			name:            "percent before flat",
			productID:       "prod_poster",
			percentPriority: 1,
			flatPriority:    2,
			want:            decimal.NewFromInt(1150),
		},
		{
			name:            "flat before percent",
			productID:       "prod_canvas",
			percentPriority: 2,
			flatPriority:    1,
			want:            decimal.NewFromInt(1155),
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.createModifier(&modifier.PriceModifier{
				ID:           "mod_pct_" + tt.productID,
				Name:         "Ten percent up",
				AppliesTo:    types.ModifierScopeProduct,
				ModifierType: types.ModifierTypePercentInc,
				Value:        decimal.NewFromInt(10),
				Priority:     tt.percentPriority,
				ProductID:    lo.ToPtr(tt.productID),
			})
			s.createModifier(&modifier.PriceModifier{
				ID:           "mod_flat_" + tt.productID,
				Name:         "Fifty flat up",
				AppliesTo:    types.ModifierScopeProduct,
				ModifierType: types.ModifierTypeFlatInc,
				Value:        decimal.NewFromInt(50),
				Priority:     tt.flatPriority,
				ProductID:    lo.ToPtr(tt.productID),
			})

			result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
				ProductID: tt.productID,
				Pincode:   "400001",
				Quantity:  1,
			})
			s.NoError(err)
			s.True(result.UnitPrice.Equal(tt.want), "unit price %s, want %s", result.UnitPrice, tt.want)
			s.Len(result.AppliedModifiers, 2)
		})
	}
}

func (s *PricingServiceSuite) TestModifierClampsAtZero() {
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_poster_giveaway",
		Name:         "Giveaway discount",
		AppliesTo:    types.ModifierScopeProduct,
		ModifierType: types.ModifierTypeFlatDec,
		Value:        decimal.NewFromInt(1500),
		Priority:     1,
		ProductID:    lo.ToPtr("prod_poster"),
	})

	result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID: "prod_poster",
		Pincode:   "400001",
		Quantity:  2,
	})
	s.NoError(err)

	s.True(result.UnitPrice.Equal(decimal.Zero))
	s.True(result.Subtotal.Equal(decimal.Zero))
	s.True(result.GSTAmount.Equal(decimal.Zero))
	s.True(result.TotalPayable.Equal(decimal.Zero))

	s.Len(result.AppliedModifiers, 1)
	step := result.AppliedModifiers[0]
	s.True(step.BeforeAmount.Equal(decimal.NewFromInt(1000)))
	s.True(step.AfterAmount.Equal(decimal.Zero))
	s.Contains(step.Reason, "(clamped to zero)")
}

func (s *PricingServiceSuite) TestPromoCodeHandling() {
	now := time.Now().UTC()

	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_promo_diwali",
		Name:         "Diwali sale",
		AppliesTo:    types.ModifierScopePromoCode,
		ModifierType: types.ModifierTypePercentDec,
		Value:        decimal.NewFromInt(20),
		Priority:     1,
		PromoCode:    lo.ToPtr("DIWALI20"),
		UsageLimit:   lo.ToPtr(100),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_promo_bygone",
		Name:         "Last season sale",
		AppliesTo:    types.ModifierScopePromoCode,
		ModifierType: types.ModifierTypePercentDec,
		Value:        decimal.NewFromInt(20),
		Priority:     1,
		PromoCode:    lo.ToPtr("BYGONE"),
		ValidUntil:   lo.ToPtr(now.Add(-24 * time.Hour)),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_promo_soldout",
		Name:         "Flash sale",
		AppliesTo:    types.ModifierScopePromoCode,
		ModifierType: types.ModifierTypePercentDec,
		Value:        decimal.NewFromInt(20),
		Priority:     1,
		PromoCode:    lo.ToPtr("SOLDOUT"),
		UsageLimit:   lo.ToPtr(5),
		UsedCount:    5,
	})

	tests := []struct {
		name        string
		promoCodes  []string
		wantUnit    decimal.Decimal
		wantIgnored []dto.IgnoredPromoCode
	}{
		{
			name:       "valid promo applies",
			promoCodes: []string{"DIWALI20"},
			wantUnit:   decimal.NewFromInt(400),
		},
		{
			name:        "expired promo is ignored",
			promoCodes:  []string{"BYGONE"},
			wantUnit:    decimal.NewFromInt(500),
			wantIgnored: []dto.IgnoredPromoCode{{Code: "BYGONE", Reason: "outside validity window"}},
		},
		{
			name:        "exhausted promo is ignored",
			promoCodes:  []string{"SOLDOUT"},
			wantUnit:    decimal.NewFromInt(500),
			wantIgnored: []dto.IgnoredPromoCode{{Code: "SOLDOUT", Reason: "usage limit reached"}},
		},
		{
			name:        "unknown promo is reported",
			promoCodes:  []string{"NOPE"},
			wantUnit:    decimal.NewFromInt(500),
			wantIgnored: []dto.IgnoredPromoCode{{Code: "NOPE", Reason: "unknown promo code"}},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
				ProductID:  "prod_business_cards",
				Pincode:    "400001",
				Quantity:   1,
				PromoCodes: tt.promoCodes,
			})
			s.NoError(err)
			s.True(result.UnitPrice.Equal(tt.wantUnit), "unit price %s, want %s", result.UnitPrice, tt.wantUnit)
			s.Equal(tt.wantIgnored, result.IgnoredPromoCodes)
		})
	}

	// Preview resolutions never consume promo capacity
	stored, err := s.GetStores().PriceModifierRepo.Get(s.GetContext(), "mod_promo_diwali")
	s.NoError(err)
	s.Equal(0, stored.UsedCount)
}

func (s *PricingServiceSuite) TestZoneModifierInheritance() {
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_zone_india",
		Name:         "National fuel surcharge",
		AppliesTo:    types.ModifierScopeZone,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(30),
		Priority:     1,
		GeoZoneID:    lo.ToPtr("zone_india"),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_zone_mumbai",
		Name:         "Mumbai octroi",
		AppliesTo:    types.ModifierScopeZone,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(20),
		Priority:     2,
		GeoZoneID:    lo.ToPtr("zone_mumbai"),
	})

	tests := []struct {
		name            string
		pincode         string
		wantUnit        decimal.Decimal
		wantModifierIDs []string
	}{
		{
			// Mumbai inherits the parent zone's surcharge on top of its own
			name:            "child zone inherits parent modifier",
			pincode:         "400001",
			wantUnit:        decimal.NewFromInt(550),
			wantModifierIDs: []string{"mod_zone_india", "mod_zone_mumbai"},
		},
		{
			name:            "sibling zone does not leak across",
			pincode:         "110001",
			wantUnit:        decimal.NewFromInt(530),
			wantModifierIDs: []string{"mod_zone_india"},
		},
		{
			name:            "pincode resolving straight to the parent",
			pincode:         "500001",
			wantUnit:        decimal.NewFromInt(530),
			wantModifierIDs: []string{"mod_zone_india"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
				ProductID: "prod_business_cards",
				Pincode:   tt.pincode,
				Quantity:  1,
			})
			s.NoError(err)
			s.True(result.UnitPrice.Equal(tt.wantUnit), "unit price %s, want %s", result.UnitPrice, tt.wantUnit)

			got := lo.Map(result.AppliedModifiers, func(step pricing.AppliedModifier, _ int) string {
				return step.ModifierID
			})
			s.Equal(tt.wantModifierIDs, got)
		})
	}
}

func (s *PricingServiceSuite) TestInclusiveGSTBackCalculation() {
	tests := []struct {
		name      string
		quantity  int
		wantTotal decimal.Decimal
		wantGST   decimal.Decimal
	}{
		{
			name:      "single unit",
			quantity:  1,
			wantTotal: decimal.NewFromInt(499),
			wantGST:   decimal.NewFromFloat(76.12), // 499 * 18/118
		},
		{
			name:      "three units",
			quantity:  3,
			wantTotal: decimal.NewFromInt(1497),
			wantGST:   decimal.NewFromFloat(228.36), // 1497 * 18/118
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
				ProductID: "prod_photo_frame",
				Pincode:   "400001",
				Quantity:  tt.quantity,
			})
			s.NoError(err)

			// Inclusive pricing: the subtotal already carries the tax
			s.True(result.TotalPayable.Equal(tt.wantTotal), "total %s, want %s", result.TotalPayable, tt.wantTotal)
			s.True(result.Subtotal.Equal(tt.wantTotal))
			s.True(result.GSTAmount.Equal(tt.wantGST), "gst %s, want %s", result.GSTAmount, tt.wantGST)

			// Re-grossing the net amount lands back on the total within a paisa
			net := result.TotalPayable.Sub(result.GSTAmount)
			regrossed := net.Mul(decimal.NewFromFloat(1.18))
			s.True(regrossed.Sub(result.TotalPayable).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)),
				"re-grossed %s drifted from total %s", regrossed, result.TotalPayable)
		})
	}
}

func (s *PricingServiceSuite) TestRangeTotalPricing() {
	result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID: "prod_flyers",
		Pincode:   "400001",
		Quantity:  250,
	})
	s.NoError(err)

	// The base price covers the whole 100-500 tier, so quantity does not
	// multiply into the subtotal
	s.True(result.Subtotal.Equal(decimal.NewFromInt(2500)))
	s.True(result.GSTAmount.Equal(decimal.NewFromInt(450)))
	s.True(result.TotalPayable.Equal(decimal.NewFromInt(2950)))

	_, err = s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID: "prod_flyers",
		Pincode:   "400001",
		Quantity:  99,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
	s.Contains(err.Error(), "no price book entry")
}

func (s *PricingServiceSuite) TestAttributeSignalSurcharges() {
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_gsm_700",
		Name:         "Heavy stock surcharge",
		AppliesTo:    types.ModifierScopeAttribute,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(25),
		Priority:     1,
		PricingKey:   lo.ToPtr("paper_gsm_700"),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_heavy_handling",
		Name:         "Heavy stock handling",
		AppliesTo:    types.ModifierScopeAttribute,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(40),
		Priority:     2,
		PricingKey:   lo.ToPtr("heavy_stock_handling"),
	})
	// Heavy paper triggers a synthetic handling signal through a rule
	s.NoError(s.GetStores().AttributeRepo.CreateRule(s.GetContext(), &attribute.AttributeRule{
		ID:                  "attrrule_heavy_stock",
		Name:                "Heavy stock needs handling",
		WhenAttributeTypeID: "attr_paper_gsm",
		WhenValue:           "700",
		Action:              types.AttributeRuleActionTriggerPricing,
		PricingSignal:       attribute.JSONBStringList{"heavy_stock_handling"},
		BaseModel:           types.GetDefaultBaseModel(s.GetContext()),
	}))

	result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID:  "prod_business_cards",
		Pincode:    "400001",
		Quantity:   1,
		Attributes: map[string]any{"paper_gsm": "700"},
	})
	s.NoError(err)

	// 500 + 25 (direct key) + 40 (rule injected key)
	s.True(result.UnitPrice.Equal(decimal.NewFromInt(565)))
	s.Len(result.AppliedModifiers, 2)
	s.Equal("mod_gsm_700", result.AppliedModifiers[0].ModifierID)
	s.Equal("mod_heavy_handling", result.AppliedModifiers[1].ModifierID)

	// Selecting the light stock leaves both surcharges dormant
	result, err = s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID:  "prod_business_cards",
		Pincode:    "400001",
		Quantity:   1,
		Attributes: map[string]any{"paper_gsm": "350"},
	})
	s.NoError(err)
	s.True(result.UnitPrice.Equal(decimal.NewFromInt(500)))
	s.Empty(result.AppliedModifiers)
}

func (s *PricingServiceSuite) TestServerPriceWinsOverClientEstimate() {
	result, err := s.service.ResolvePrice(s.GetContext(), dto.PricingRequest{
		ProductID:     "prod_business_cards",
		Pincode:       "400001",
		Quantity:      10,
		ExpectedTotal: lo.ToPtr(decimal.NewFromInt(100)),
	})
	s.NoError(err)

	// A drifting client estimate never changes the computed price
	s.True(result.TotalPayable.Equal(decimal.NewFromInt(5900)))
}

func (s *PricingServiceSuite) TestCreatePriceSnapshotEndToEnd() {
	s.createModifier(&modifier.PriceModifier{
		ID:            "mod_vip_five_off",
		Name:          "VIP tier discount",
		AppliesTo:     types.ModifierScopeSegment,
		ModifierType:  types.ModifierTypePercentDec,
		Value:         decimal.NewFromInt(5),
		Priority:      1,
		UserSegmentID: lo.ToPtr("seg_vip"),
	})
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_gsm_350_premium",
		Name:         "Premium paper surcharge",
		AppliesTo:    types.ModifierScopeAttribute,
		ModifierType: types.ModifierTypeFlatInc,
		Value:        decimal.NewFromInt(20),
		Priority:     1,
		PricingKey:   lo.ToPtr("paper_gsm_350"),
	})

	resp, err := s.service.CreatePriceSnapshot(s.GetContext(), dto.CreatePriceSnapshotRequest{
		PricingRequest: dto.PricingRequest{
			UserID:     "user_vip",
			ProductID:  "prod_business_cards",
			Pincode:    "400001",
			Quantity:   10,
			Attributes: map[string]any{"paper_gsm": "350"},
		},
		OrderID: "order_e2e_1",
	})
	s.NoError(err)
	s.NotNil(resp)

	// 500 -5% = 475, +20 = 495; x10 = 4950; 18% GST = 891
	snapshot := resp.Snapshot.PriceSnapshot
	s.Equal("order_e2e_1", snapshot.OrderID)
	s.Equal("prod_business_cards", snapshot.ProductID)
	s.True(snapshot.BasePrice.Equal(decimal.NewFromInt(500)))
	s.True(snapshot.UnitPrice.Equal(decimal.NewFromInt(495)))
	s.Equal(10, snapshot.Quantity)
	s.True(snapshot.Subtotal.Equal(decimal.NewFromInt(4950)))
	s.True(snapshot.GSTAmount.Equal(decimal.NewFromInt(891)))
	s.True(snapshot.TotalPayable.Equal(decimal.NewFromInt(5841)))
	s.Equal("INR", snapshot.Currency)
	s.Equal("VIP", resp.Result.SegmentCode)

	s.Len(snapshot.AppliedModifiers, 2)
	s.Equal("mod_vip_five_off", snapshot.AppliedModifiers[0].ModifierID)
	s.True(snapshot.AppliedModifiers[0].BeforeAmount.Equal(decimal.NewFromInt(500)))
	s.True(snapshot.AppliedModifiers[0].AfterAmount.Equal(decimal.NewFromInt(475)))
	s.Equal("mod_gsm_350_premium", snapshot.AppliedModifiers[1].ModifierID)
	s.True(snapshot.AppliedModifiers[1].BeforeAmount.Equal(decimal.NewFromInt(475)))
	s.True(snapshot.AppliedModifiers[1].AfterAmount.Equal(decimal.NewFromInt(495)))

	// The audit trail is persisted step by step
	logs, err := s.service.ListCalculationLogs(s.GetContext(), snapshot.ID)
	s.NoError(err)
	s.Equal(2, logs.Total)
	s.Equal(0, logs.Items[0].StepIndex)
	s.Equal("mod_vip_five_off", logs.Items[0].ModifierID)
	s.Equal(1, logs.Items[1].StepIndex)
	s.Equal("mod_gsm_350_premium", logs.Items[1].ModifierID)
	s.Equal("order_e2e_1", logs.Items[0].OrderID)

	byOrder, err := s.service.GetSnapshotByOrder(s.GetContext(), "order_e2e_1")
	s.NoError(err)
	s.Equal(snapshot.ID, byOrder.ID)

	// The snapshot event went out on the webhook topic
	msgs := s.WebhookMessages()
	s.Require().Len(msgs, 1)
	var event types.WebhookEvent
	s.NoError(json.Unmarshal(msgs[0].Payload, &event))
	s.Equal(types.WebhookEventPriceSnapshotCreated, event.EventName)
	var internalEvent webhookDto.InternalPriceSnapshotEvent
	s.NoError(json.Unmarshal(event.Payload, &internalEvent))
	s.Equal(snapshot.ID, internalEvent.SnapshotID)

	// Snapshot, logs and promo counters persist atomically
	s.Equal(1, s.TxCalls())
}

func (s *PricingServiceSuite) TestRepricingCreatesNewSnapshot() {
	first, err := s.service.CreatePriceSnapshot(s.GetContext(), dto.CreatePriceSnapshotRequest{
		PricingRequest: dto.PricingRequest{
			ProductID: "prod_business_cards",
			Pincode:   "400001",
			Quantity:  1,
		},
		OrderID: "order_reprice_1",
	})
	s.NoError(err)
	s.True(first.Snapshot.TotalPayable.Equal(decimal.NewFromInt(590)))

	// Pricing rules change between the first quote and the reprice
	s.createModifier(&modifier.PriceModifier{
		ID:           "mod_global_revision",
		Name:         "Across the board increase",
		AppliesTo:    types.ModifierScopeGlobal,
		ModifierType: types.ModifierTypePercentInc,
		Value:        decimal.NewFromInt(10),
		Priority:     1,
	})

	// Keep the two snapshots apart on the calculated_at ordering
	time.Sleep(5 * time.Millisecond)

	second, err := s.service.CreatePriceSnapshot(s.GetContext(), dto.CreatePriceSnapshotRequest{
		PricingRequest: dto.PricingRequest{
			ProductID: "prod_business_cards",
			Pincode:   "400001",
			Quantity:  1,
		},
		OrderID: "order_reprice_1",
	})
	s.NoError(err)
	s.NotEqual(first.Snapshot.ID, second.Snapshot.ID)
	s.True(second.Snapshot.TotalPayable.Equal(decimal.NewFromInt(649))) // 550 + 18%

	// The order now reads the latest snapshot; the first one is untouched
	latest, err := s.service.GetSnapshotByOrder(s.GetContext(), "order_reprice_1")
	s.NoError(err)
	s.Equal(second.Snapshot.ID, latest.ID)

	original, err := s.service.GetPriceSnapshot(s.GetContext(), first.Snapshot.ID)
	s.NoError(err)
	s.True(original.TotalPayable.Equal(decimal.NewFromInt(590)))
	s.True(original.CalculatedAt.Equal(first.Snapshot.CalculatedAt))
}

func (s *PricingServiceSuite) TestPromoRedemptionsNeverExceedCapacity() {
	promo := s.createModifier(&modifier.PriceModifier{
		ID:           "mod_promo_flash",
		Name:         "Flash fifty",
		AppliesTo:    types.ModifierScopePromoCode,
		ModifierType: types.ModifierTypePercentDec,
		Value:        decimal.NewFromInt(50),
		Priority:     1,
		PromoCode:    lo.ToPtr("FLASH50"),
		UsageLimit:   lo.ToPtr(1),
	})

	const orders = 5

	type outcome struct {
		resp *dto.CreatePriceSnapshotResponse
		err  error
	}
	results := make(chan outcome, orders)

	for i := 0; i < orders; i++ {
		go func(i int) {
			resp, err := s.service.CreatePriceSnapshot(s.GetContext(), dto.CreatePriceSnapshotRequest{
				PricingRequest: dto.PricingRequest{
					ProductID:  "prod_business_cards",
					Pincode:    "400001",
					Quantity:   1,
					PromoCodes: []string{"FLASH50"},
				},
				OrderID: fmt.Sprintf("order_flash_%d", i),
			})
			results <- outcome{resp: resp, err: err}
		}(i)
	}

	redemptions := 0
	for i := 0; i < orders; i++ {
		out := <-results
		if out.err != nil {
			// Losing a racing redemption surfaces as a version conflict
			s.True(ierr.IsVersionConflict(out.err), "unexpected error: %v", out.err)
			continue
		}
		discounted := lo.ContainsBy(out.resp.Result.AppliedModifiers, func(step pricing.AppliedModifier) bool {
			return step.ModifierID == promo.ID
		})
		if discounted {
			s.True(out.resp.Snapshot.TotalPayable.Equal(decimal.NewFromInt(295))) // 250 + 18%
			redemptions++
		}
	}

	s.Equal(1, redemptions, "exactly one order may redeem the last unit of capacity")

	stored, err := s.GetStores().PriceModifierRepo.Get(s.GetContext(), promo.ID)
	s.NoError(err)
	s.Equal(1, stored.UsedCount)
}

func (s *PricingServiceSuite) TestListPriceSnapshots() {
	orders := []struct {
		orderID   string
		productID string
	}{
		{"order_list_1", "prod_business_cards"},
		{"order_list_2", "prod_poster"},
		{"order_list_3", "prod_business_cards"},
	}
	for _, o := range orders {
		_, err := s.service.CreatePriceSnapshot(s.GetContext(), dto.CreatePriceSnapshotRequest{
			PricingRequest: dto.PricingRequest{
				ProductID: o.productID,
				Pincode:   "400001",
				Quantity:  1,
			},
			OrderID: o.orderID,
		})
		s.NoError(err)
	}

	all, err := s.service.ListPriceSnapshots(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(3, all.Pagination.Total)
	s.Len(all.Items, 3)

	byProduct := types.NewPriceSnapshotFilter()
	byProduct.ProductIDs = []string{"prod_business_cards"}
	filtered, err := s.service.ListPriceSnapshots(s.GetContext(), byProduct)
	s.NoError(err)
	s.Equal(2, filtered.Pagination.Total)

	byOrder := types.NewPriceSnapshotFilter()
	byOrder.OrderIDs = []string{"order_list_2"}
	filtered, err = s.service.ListPriceSnapshots(s.GetContext(), byOrder)
	s.NoError(err)
	s.Equal(1, filtered.Pagination.Total)
	s.Equal("order_list_2", filtered.Items[0].OrderID)

	paged := types.NewPriceSnapshotFilter()
	paged.QueryFilter.Limit = lo.ToPtr(1)
	page, err := s.service.ListPriceSnapshots(s.GetContext(), paged)
	s.NoError(err)
	s.Len(page.Items, 1)
	s.Equal(3, page.Pagination.Total)
}

func (s *PricingServiceSuite) TestSnapshotLookupErrors() {
	_, err := s.service.GetPriceSnapshot(s.GetContext(), "snap_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.GetSnapshotByOrder(s.GetContext(), "order_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.ListCalculationLogs(s.GetContext(), "snap_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
