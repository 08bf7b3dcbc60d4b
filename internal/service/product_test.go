package service

import (
	"testing"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/product"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/testutil"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProductServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  ProductService
	testData struct {
		products struct {
			businessCards *product.Product
			stickers      *product.Product
		}
	}
}

func TestProductService(t *testing.T) {
	suite.Run(t, new(ProductServiceSuite))
}

func (s *ProductServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *ProductServiceSuite) TearDownTest() {
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *ProductServiceSuite) setupService() {
	s.service = NewProductService(ServiceParams{
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

func (s *ProductServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.products.businessCards = &product.Product{
		ID:            "prod_business_cards",
		Name:          "Business Cards 350gsm",
		GSTPercentage: decimal.NewFromInt(18),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.testData.products.stickers = &product.Product{
		ID:                    "prod_stickers",
		Name:                  "Die Cut Stickers",
		GSTPercentage:         decimal.NewFromInt(12),
		ShowPriceIncludingGST: true,
		BaseModel:             types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ProductRepo.Create(ctx, s.testData.products.businessCards))
	s.NoError(s.GetStores().ProductRepo.Create(ctx, s.testData.products.stickers))
}

func (s *ProductServiceSuite) TestCreateProduct() {
	tests := []struct {
		name      string
		req       dto.CreateProductRequest
		wantErr   bool
		errString string
	}{
		{
			name: "valid product",
			req: dto.CreateProductRequest{
				Name:          "Wedding Invitations",
				Description:   "Premium textured card stock",
				GSTPercentage: decimal.NewFromInt(18),
			},
		},
		{
			name: "tax inclusive product",
			req: dto.CreateProductRequest{
				Name:                  "Photo Mugs",
				GSTPercentage:         decimal.NewFromInt(12),
				ShowPriceIncludingGST: true,
			},
		},
		{
			name:      "missing name",
			req:       dto.CreateProductRequest{GSTPercentage: decimal.NewFromInt(18)},
			wantErr:   true,
			errString: "name is required",
		},
		{
			name: "negative gst",
			req: dto.CreateProductRequest{
				Name:          "Bad Tax",
				GSTPercentage: decimal.NewFromInt(-1),
			},
			wantErr:   true,
			errString: "gst_percentage must be between 0 and 100",
		},
		{
			name: "gst above hundred",
			req: dto.CreateProductRequest{
				Name:          "Bad Tax",
				GSTPercentage: decimal.NewFromInt(101),
			},
			wantErr:   true,
			errString: "gst_percentage must be between 0 and 100",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.CreateProduct(s.GetContext(), tt.req)
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
			s.True(resp.GSTPercentage.Equal(tt.req.GSTPercentage))
			s.Equal(tt.req.ShowPriceIncludingGST, resp.ShowPriceIncludingGST)

			stored, err := s.GetStores().ProductRepo.Get(s.GetContext(), resp.ID)
			s.NoError(err)
			s.Equal(tt.req.Name, stored.Name)
		})
	}
}

func (s *ProductServiceSuite) TestGetProduct() {
	resp, err := s.service.GetProduct(s.GetContext(), "prod_business_cards")
	s.NoError(err)
	s.Equal("Business Cards 350gsm", resp.Name)

	_, err = s.service.GetProduct(s.GetContext(), "prod_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ProductServiceSuite) TestListProducts() {
	resp, err := s.service.ListProducts(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Len(resp.Items, 2)

	filter := types.NewProductFilter()
	filter.ProductIDs = []string{"prod_stickers"}
	resp, err = s.service.ListProducts(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("Die Cut Stickers", resp.Items[0].Name)
}

func (s *ProductServiceSuite) TestUpdateProduct() {
	resp, err := s.service.UpdateProduct(s.GetContext(), "prod_business_cards", dto.UpdateProductRequest{
		Name:          lo.ToPtr("Business Cards 400gsm"),
		GSTPercentage: lo.ToPtr(decimal.NewFromInt(12)),
	})
	s.NoError(err)
	s.Equal("Business Cards 400gsm", resp.Name)
	s.True(resp.GSTPercentage.Equal(decimal.NewFromInt(12)))

	stored, err := s.GetStores().ProductRepo.Get(s.GetContext(), "prod_business_cards")
	s.NoError(err)
	s.Equal("Business Cards 400gsm", stored.Name)

	_, err = s.service.UpdateProduct(s.GetContext(), "prod_business_cards", dto.UpdateProductRequest{
		Name: lo.ToPtr(""),
	})
	s.Error(err)
	s.Contains(err.Error(), "name must not be empty")

	_, err = s.service.UpdateProduct(s.GetContext(), "prod_missing", dto.UpdateProductRequest{
		Name: lo.ToPtr("Ghost"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ProductServiceSuite) TestDeleteProduct() {
	s.NoError(s.service.DeleteProduct(s.GetContext(), "prod_stickers"))

	_, err := s.service.GetProduct(s.GetContext(), "prod_stickers")
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	err = s.service.DeleteProduct(s.GetContext(), "prod_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
