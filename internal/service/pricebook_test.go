package service

import (
	"testing"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/geozone"
	"github.com/printprice/printprice/internal/domain/pricebook"
	"github.com/printprice/printprice/internal/domain/product"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/testutil"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PriceBookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PriceBookService
	testData struct {
		products struct {
			cards  *product.Product
			poster *product.Product
			flyers *product.Product
		}
		zones struct {
			india  *geozone.GeoZone
			mumbai *geozone.GeoZone
			dubai  *geozone.GeoZone
		}
		books struct {
			defaultINR *pricebook.PriceBook
			mumbai     *pricebook.PriceBook
			india      *pricebook.PriceBook
			defaultAED *pricebook.PriceBook
		}
		entries struct {
			cardsTier1  *pricebook.PriceBookEntry
			cardsTier2  *pricebook.PriceBookEntry
			poster      *pricebook.PriceBookEntry
			flyers      *pricebook.PriceBookEntry
			mumbaiCards *pricebook.PriceBookEntry
			indiaPoster *pricebook.PriceBookEntry
			aedCards    *pricebook.PriceBookEntry
		}
	}
}

func TestPriceBookService(t *testing.T) {
	suite.Run(t, new(PriceBookServiceSuite))
}

func (s *PriceBookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *PriceBookServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *PriceBookServiceSuite) setupService() {
	s.service = NewPriceBookService(ServiceParams{
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

func (s *PriceBookServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.products.cards = &product.Product{
		ID:            "prod_cards",
		Name:          "Business Cards",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.poster = &product.Product{
		ID:            "prod_poster",
		Name:          "A2 Poster",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.flyers = &product.Product{
		ID:            "prod_flyers",
		Name:          "A5 Flyers",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	for _, p := range []*product.Product{
		s.testData.products.cards,
		s.testData.products.poster,
		s.testData.products.flyers,
	} {
		s.NoError(s.GetStores().ProductRepo.Create(ctx, p))
	}

	s.testData.zones.india = &geozone.GeoZone{
		ID:        "zone_india",
		Name:      "India",
		Code:      "IN",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.testData.zones.mumbai = &geozone.GeoZone{
		ID:        "zone_mumbai",
		Name:      "Mumbai",
		Code:      "MUM",
		ParentID:  lo.ToPtr("zone_india"),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.testData.zones.dubai = &geozone.GeoZone{
		ID:        "zone_dubai",
		Name:      "Dubai",
		Code:      "DXB",
		Currency:  lo.ToPtr("AED"),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	for _, z := range []*geozone.GeoZone{s.testData.zones.india, s.testData.zones.mumbai, s.testData.zones.dubai} {
		s.NoError(s.GetStores().GeoZoneRepo.Create(ctx, z))
	}

	s.testData.books.defaultINR = &pricebook.PriceBook{
		ID:        "pb_default_inr",
		Name:      "India Default",
		Currency:  "INR",
		IsDefault: true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.testData.books.mumbai = &pricebook.PriceBook{
		ID:        "pb_mumbai",
		Name:      "Mumbai Metro",
		Currency:  "INR",
		GeoZoneID: lo.ToPtr("zone_mumbai"),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.testData.books.india = &pricebook.PriceBook{
		ID:        "pb_india",
		Name:      "India Zone Book",
		Currency:  "INR",
		GeoZoneID: lo.ToPtr("zone_india"),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.testData.books.defaultAED = &pricebook.PriceBook{
		ID:        "pb_default_aed",
		Name:      "Gulf Default",
		Currency:  "AED",
		IsDefault: true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	for _, b := range []*pricebook.PriceBook{
		s.testData.books.defaultINR,
		s.testData.books.mumbai,
		s.testData.books.india,
		s.testData.books.defaultAED,
	} {
		s.NoError(s.GetStores().PriceBookRepo.Create(ctx, b))
	}

	s.testData.entries.cardsTier1 = &pricebook.PriceBookEntry{
		ID:          "pbe_def_cards_1",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_cards",
		BasePrice:   decimal.NewFromInt(500),
		MinQuantity: 1,
		MaxQuantity: lo.ToPtr(99),
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.cardsTier2 = &pricebook.PriceBookEntry{
		ID:          "pbe_def_cards_100",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_cards",
		BasePrice:   decimal.NewFromInt(400),
		MinQuantity: 100,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.poster = &pricebook.PriceBookEntry{
		ID:          "pbe_def_poster",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_poster",
		BasePrice:   decimal.NewFromInt(900),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.flyers = &pricebook.PriceBookEntry{
		ID:          "pbe_def_flyers",
		PriceBookID: "pb_default_inr",
		ProductID:   "prod_flyers",
		BasePrice:   decimal.NewFromInt(2500),
		MinQuantity: 100,
		MaxQuantity: lo.ToPtr(500),
		PriceKind:   types.PriceKindRangeTotal,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.mumbaiCards = &pricebook.PriceBookEntry{
		ID:          "pbe_mum_cards",
		PriceBookID: "pb_mumbai",
		ProductID:   "prod_cards",
		BasePrice:   decimal.NewFromInt(450),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.indiaPoster = &pricebook.PriceBookEntry{
		ID:          "pbe_in_poster",
		PriceBookID: "pb_india",
		ProductID:   "prod_poster",
		BasePrice:   decimal.NewFromInt(850),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	s.testData.entries.aedCards = &pricebook.PriceBookEntry{
		ID:          "pbe_aed_cards",
		PriceBookID: "pb_default_aed",
		ProductID:   "prod_cards",
		BasePrice:   decimal.NewFromInt(25),
		MinQuantity: 1,
		PriceKind:   types.PriceKindPerUnit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	for _, e := range []*pricebook.PriceBookEntry{
		s.testData.entries.cardsTier1,
		s.testData.entries.cardsTier2,
		s.testData.entries.poster,
		s.testData.entries.flyers,
		s.testData.entries.mumbaiCards,
		s.testData.entries.indiaPoster,
		s.testData.entries.aedCards,
	} {
		s.NoError(s.GetStores().PriceBookRepo.CreateEntry(ctx, e))
	}
}

func (s *PriceBookServiceSuite) TestCreatePriceBook() {
	tests := []struct {
		name      string
		req       dto.CreatePriceBookRequest
		wantErr   bool
		errString string
	}{
		{
			name: "valid book",
			req: dto.CreatePriceBookRequest{
				Name:     "Festive Season",
				Currency: "INR",
			},
		},
		{
			name: "valid zone bound book",
			req: dto.CreatePriceBookRequest{
				Name:      "Mumbai Express",
				Currency:  "INR",
				GeoZoneID: lo.ToPtr("zone_mumbai"),
			},
		},
		{
			name:      "missing name",
			req:       dto.CreatePriceBookRequest{Currency: "INR"},
			wantErr:   true,
			errString: "name is required",
		},
		{
			name:      "bad currency",
			req:       dto.CreatePriceBookRequest{Name: "Bad Money", Currency: "RUPEES"},
			wantErr:   true,
			errString: "currency must be a 3 letter ISO code",
		},
		{
			name:      "unsupported currency",
			req:       dto.CreatePriceBookRequest{Name: "Test Money", Currency: "XTS"},
			wantErr:   true,
			errString: "currency is not supported",
		},
		{
			name: "dangling zone",
			req: dto.CreatePriceBookRequest{
				Name:      "Nowhere",
				Currency:  "INR",
				GeoZoneID: lo.ToPtr("zone_missing"),
			},
			wantErr:   true,
			errString: "not found",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreatePriceBook(s.GetContext(), tt.req)
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
			s.Equal(tt.req.Currency, resp.Currency)
		})
	}
}

func (s *PriceBookServiceSuite) TestCreateDefaultBookDemotesPrevious() {
	resp, err := s.service.CreatePriceBook(s.GetContext(), dto.CreatePriceBookRequest{
		Name:      "New India Default",
		Currency:  "INR",
		IsDefault: true,
	})
	s.NoError(err)

	fallback, err := s.GetStores().PriceBookRepo.GetDefault(s.GetContext(), "INR")
	s.NoError(err)
	s.Equal(resp.ID, fallback.ID)

	previous, err := s.GetStores().PriceBookRepo.Get(s.GetContext(), "pb_default_inr")
	s.NoError(err)
	s.False(previous.IsDefault)

	// Defaults are scoped per currency; the AED default is untouched
	aed, err := s.GetStores().PriceBookRepo.GetDefault(s.GetContext(), "AED")
	s.NoError(err)
	s.Equal("pb_default_aed", aed.ID)
}

func (s *PriceBookServiceSuite) TestGetPriceBook() {
	resp, err := s.service.GetPriceBook(s.GetContext(), "pb_mumbai")
	s.NoError(err)
	s.Equal("Mumbai Metro", resp.Name)

	_, err = s.service.GetPriceBook(s.GetContext(), "pb_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceBookServiceSuite) TestListPriceBooks() {
	resp, err := s.service.ListPriceBooks(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(4, resp.Pagination.Total)

	byCurrency := types.NewPriceBookFilter()
	byCurrency.Currency = lo.ToPtr("AED")
	resp, err = s.service.ListPriceBooks(s.GetContext(), byCurrency)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("Gulf Default", resp.Items[0].Name)

	byZone := types.NewPriceBookFilter()
	byZone.GeoZoneID = lo.ToPtr("zone_mumbai")
	resp, err = s.service.ListPriceBooks(s.GetContext(), byZone)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)

	defaults := types.NewPriceBookFilter()
	defaults.IsDefault = lo.ToPtr(true)
	resp, err = s.service.ListPriceBooks(s.GetContext(), defaults)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total) // one per currency
}

func (s *PriceBookServiceSuite) TestUpdatePriceBook() {
	resp, err := s.service.UpdatePriceBook(s.GetContext(), "pb_mumbai", dto.UpdatePriceBookRequest{
		Name:      lo.ToPtr("Greater Mumbai Metro"),
		GeoZoneID: lo.ToPtr("zone_india"),
	})
	s.NoError(err)
	s.Equal("Greater Mumbai Metro", resp.Name)
	s.Equal(lo.ToPtr("zone_india"), resp.GeoZoneID)

	_, err = s.service.UpdatePriceBook(s.GetContext(), "pb_mumbai", dto.UpdatePriceBookRequest{
		GeoZoneID: lo.ToPtr("zone_missing"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.UpdatePriceBook(s.GetContext(), "pb_missing", dto.UpdatePriceBookRequest{
		Name: lo.ToPtr("Ghost"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceBookServiceSuite) TestDeletePriceBook() {
	s.NoError(s.service.DeletePriceBook(s.GetContext(), "pb_mumbai"))

	_, err := s.service.GetPriceBook(s.GetContext(), "pb_mumbai")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	// The currency fallback cannot be removed while it is the default
	err = s.service.DeletePriceBook(s.GetContext(), "pb_default_inr")
	s.Error(err)
	s.Contains(err.Error(), "default price book cannot be deleted")
}

func (s *PriceBookServiceSuite) TestSetDefault() {
	resp, err := s.service.SetDefault(s.GetContext(), "pb_india")
	s.NoError(err)
	s.True(resp.IsDefault)

	previous, err := s.GetStores().PriceBookRepo.Get(s.GetContext(), "pb_default_inr")
	s.NoError(err)
	s.False(previous.IsDefault)

	_, err = s.service.SetDefault(s.GetContext(), "pb_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceBookServiceSuite) TestCreateEntry() {
	tests := []struct {
		name        string
		priceBookID string
		req         dto.CreatePriceBookEntryRequest
		wantErr     bool
		errString   string
	}{
		{
			name:        "valid entry",
			priceBookID: "pb_mumbai",
			req: dto.CreatePriceBookEntryRequest{
				ProductID:   "prod_poster",
				BasePrice:   decimal.NewFromInt(875),
				MinQuantity: 1,
				MaxQuantity: lo.ToPtr(49),
			},
		},
		{
			name:        "min quantity defaults to one",
			priceBookID: "pb_mumbai",
			req: dto.CreatePriceBookEntryRequest{
				ProductID: "prod_flyers",
				BasePrice: decimal.NewFromInt(1200),
			},
		},
		{
			name:        "unknown book",
			priceBookID: "pb_missing",
			req: dto.CreatePriceBookEntryRequest{
				ProductID: "prod_poster",
				BasePrice: decimal.NewFromInt(875),
			},
			wantErr:   true,
			errString: "not found",
		},
		{
			name:        "unknown product",
			priceBookID: "pb_mumbai",
			req: dto.CreatePriceBookEntryRequest{
				ProductID: "prod_missing",
				BasePrice: decimal.NewFromInt(875),
			},
			wantErr:   true,
			errString: "not found",
		},
		{
			name:        "zero base price",
			priceBookID: "pb_mumbai",
			req: dto.CreatePriceBookEntryRequest{
				ProductID: "prod_poster",
				BasePrice: decimal.Zero,
			},
			wantErr:   true,
			errString: "base_price must be greater than zero",
		},
		{
			name:        "max below min",
			priceBookID: "pb_mumbai",
			req: dto.CreatePriceBookEntryRequest{
				ProductID:   "prod_poster",
				BasePrice:   decimal.NewFromInt(875),
				MinQuantity: 50,
				MaxQuantity: lo.ToPtr(10),
			},
			wantErr:   true,
			errString: "max_quantity must not be below min_quantity",
		},
		{
			name:        "overlapping tier",
			priceBookID: "pb_default_inr",
			req: dto.CreatePriceBookEntryRequest{
				ProductID:   "prod_cards",
				BasePrice:   decimal.NewFromInt(480),
				MinQuantity: 50,
				MaxQuantity: lo.ToPtr(150),
			},
			wantErr:   true,
			errString: "quantity tier overlaps an existing entry",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateEntry(s.GetContext(), tt.priceBookID, tt.req)
			if tt.wantErr {
				s.Error(err)
				if tt.errString != "" {
					s.Contains(err.Error(), tt.errString)
				}
				return
			}
			s.NoError(err)
			s.NotNil(resp)
			s.Equal(tt.priceBookID, resp.PriceBookID)
			s.GreaterOrEqual(resp.MinQuantity, 1)
		})
	}
}

func (s *PriceBookServiceSuite) TestCreateEntryAdjacentTiersDoNotOverlap() {
	first, err := s.service.CreateEntry(s.GetContext(), "pb_india", dto.CreatePriceBookEntryRequest{
		ProductID:   "prod_cards",
		BasePrice:   decimal.NewFromInt(490),
		MinQuantity: 1,
		MaxQuantity: lo.ToPtr(49),
	})
	s.NoError(err)
	s.NotNil(first)

	second, err := s.service.CreateEntry(s.GetContext(), "pb_india", dto.CreatePriceBookEntryRequest{
		ProductID:   "prod_cards",
		BasePrice:   decimal.NewFromInt(460),
		MinQuantity: 50,
	})
	s.NoError(err)
	s.NotNil(second)
}

func (s *PriceBookServiceSuite) TestUpdateEntry() {
	resp, err := s.service.UpdateEntry(s.GetContext(), "pbe_def_cards_1", dto.UpdatePriceBookEntryRequest{
		BasePrice: lo.ToPtr(decimal.NewFromInt(550)),
	})
	s.NoError(err)
	s.True(resp.BasePrice.Equal(decimal.NewFromInt(550)))

	// Narrowing the window away from the neighbour is allowed
	resp, err = s.service.UpdateEntry(s.GetContext(), "pbe_def_cards_1", dto.UpdatePriceBookEntryRequest{
		MaxQuantity: lo.ToPtr(89),
	})
	s.NoError(err)
	s.Equal(lo.ToPtr(89), resp.MaxQuantity)

	// Sliding the upper tier down into the lower one is not
	_, err = s.service.UpdateEntry(s.GetContext(), "pbe_def_cards_100", dto.UpdatePriceBookEntryRequest{
		MinQuantity: lo.ToPtr(80),
	})
	s.Error(err)
	s.Contains(err.Error(), "quantity tier overlaps an existing entry")

	_, err = s.service.UpdateEntry(s.GetContext(), "pbe_def_cards_1", dto.UpdatePriceBookEntryRequest{
		MaxQuantity: lo.ToPtr(0),
	})
	s.Error(err)
	s.Contains(err.Error(), "max_quantity must not be below min_quantity")

	_, err = s.service.UpdateEntry(s.GetContext(), "pbe_missing", dto.UpdatePriceBookEntryRequest{
		BasePrice: lo.ToPtr(decimal.NewFromInt(100)),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceBookServiceSuite) TestListEntries() {
	filter := types.NewPriceBookEntryFilter()
	filter.PriceBookID = lo.ToPtr("pb_default_inr")
	resp, err := s.service.ListEntries(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(4, resp.Pagination.Total)

	filter = types.NewPriceBookEntryFilter()
	filter.PriceBookID = lo.ToPtr("pb_default_inr")
	filter.ProductID = lo.ToPtr("prod_cards")
	resp, err = s.service.ListEntries(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	// Ordered by tier window
	s.Equal(1, resp.Items[0].MinQuantity)
	s.Equal(100, resp.Items[1].MinQuantity)
}

func (s *PriceBookServiceSuite) TestDeleteEntry() {
	s.NoError(s.service.DeleteEntry(s.GetContext(), "pbe_mum_cards"))

	_, err := s.service.GetEntry(s.GetContext(), "pbe_mum_cards")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	err = s.service.DeleteEntry(s.GetContext(), "pbe_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PriceBookServiceSuite) TestSelectEntry() {
	chain := func(zones ...*geozone.GeoZone) []*geozone.GeoZone { return zones }

	tests := []struct {
		name        string
		productID   string
		zoneChain   []*geozone.GeoZone
		quantity    int
		wantBookID  string
		wantEntryID string
		errString   string
	}{
		{
			name:        "zone book beats the currency default",
			productID:   "prod_cards",
			zoneChain:   chain(s.testData.zones.mumbai, s.testData.zones.india),
			quantity:    10,
			wantBookID:  "pb_mumbai",
			wantEntryID: "pbe_mum_cards",
		},
		{
			name:        "zone book without the product falls through to the default",
			productID:   "prod_cards",
			zoneChain:   chain(s.testData.zones.india),
			quantity:    10,
			wantBookID:  "pb_default_inr",
			wantEntryID: "pbe_def_cards_1",
		},
		{
			name:        "parent zone book serves when the child has no match",
			productID:   "prod_poster",
			zoneChain:   chain(s.testData.zones.mumbai, s.testData.zones.india),
			quantity:    1,
			wantBookID:  "pb_india",
			wantEntryID: "pbe_in_poster",
		},
		{
			name:        "quantity picks the covering tier",
			productID:   "prod_cards",
			zoneChain:   nil,
			quantity:    150,
			wantBookID:  "pb_default_inr",
			wantEntryID: "pbe_def_cards_100",
		},
		{
			name:        "zone currency selects the default book",
			productID:   "prod_cards",
			zoneChain:   chain(s.testData.zones.dubai),
			quantity:    1,
			wantBookID:  "pb_default_aed",
			wantEntryID: "pbe_aed_cards",
		},
		{
			name:      "quantity outside every tier",
			productID: "prod_flyers",
			zoneChain: nil,
			quantity:  50,
			errString: "no price book entry",
		},
		{
			name:      "product priced nowhere",
			productID: "prod_missing",
			zoneChain: chain(s.testData.zones.mumbai, s.testData.zones.india),
			quantity:  1,
			errString: "no price book entry",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			book, entry, err := s.service.SelectEntry(s.GetContext(), tt.productID, tt.zoneChain, tt.quantity)
			if tt.errString != "" {
				s.Error(err)
				s.Contains(err.Error(), tt.errString)
				return
			}
			s.NoError(err)
			s.Equal(tt.wantBookID, book.ID)
			s.Equal(tt.wantEntryID, entry.ID)
		})
	}
}
