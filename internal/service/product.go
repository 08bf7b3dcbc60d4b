package service

import (
	"context"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/types"
)

// ProductService defines the interface for product operations
type ProductService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter *types.ProductFilter) (*dto.ListProductsResponse, error)
	UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	ServiceParams
}

// NewProductService creates a new product service
func NewProductService(params ServiceParams) ProductService {
	return &productService{
		ServiceParams: params,
	}
}

// CreateProduct creates a new product
func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToProduct(types.GetDefaultBaseModel(ctx))

	if err := s.ProductRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return &dto.ProductResponse{Product: p}, nil
}

// GetProduct retrieves a product by ID
func (s *productService) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ProductResponse{Product: p}, nil
}

// ListProducts lists products matching the filter
func (s *productService) ListProducts(ctx context.Context, filter *types.ProductFilter) (*dto.ListProductsResponse, error) {
	if filter == nil {
		filter = types.NewProductFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	products, err := s.ProductRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.ProductRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		items[i] = &dto.ProductResponse{Product: p}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdateProduct updates an existing product
func (s *productService) UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.GSTPercentage != nil {
		p.GSTPercentage = *req.GSTPercentage
	}
	if req.ShowPriceIncludingGST != nil {
		p.ShowPriceIncludingGST = *req.ShowPriceIncludingGST
	}

	if err := s.ProductRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return &dto.ProductResponse{Product: p}, nil
}

// DeleteProduct soft deletes a product
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.ProductRepo.Get(ctx, id); err != nil {
		return err
	}

	return s.ProductRepo.Delete(ctx, id)
}
