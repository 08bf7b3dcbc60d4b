package service

import (
	"context"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/types"
)

// PriceModifierService defines the interface for price modifier operations
type PriceModifierService interface {
	CreatePriceModifier(ctx context.Context, req dto.CreatePriceModifierRequest) (*dto.PriceModifierResponse, error)
	GetPriceModifier(ctx context.Context, id string) (*dto.PriceModifierResponse, error)
	ListPriceModifiers(ctx context.Context, filter *types.PriceModifierFilter) (*dto.ListPriceModifiersResponse, error)
	UpdatePriceModifier(ctx context.Context, id string, req dto.UpdatePriceModifierRequest) (*dto.PriceModifierResponse, error)
	DeletePriceModifier(ctx context.Context, id string) error
}

type priceModifierService struct {
	ServiceParams
}

// NewPriceModifierService creates a new price modifier service
func NewPriceModifierService(params ServiceParams) PriceModifierService {
	return &priceModifierService{
		ServiceParams: params,
	}
}

// CreatePriceModifier creates a new price modifier
func (s *priceModifierService) CreatePriceModifier(ctx context.Context, req dto.CreatePriceModifierRequest) (*dto.PriceModifierResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := req.ToPriceModifier(types.GetDefaultBaseModel(ctx))

	if err := m.Validate(); err != nil {
		return nil, err
	}

	// Discriminators must point at live records; a modifier targeting a
	// deleted zone or segment would never match anything.
	if m.GeoZoneID != nil {
		if _, err := s.GeoZoneRepo.Get(ctx, *m.GeoZoneID); err != nil {
			return nil, err
		}
	}
	if m.UserSegmentID != nil {
		if _, err := s.UserSegmentRepo.Get(ctx, *m.UserSegmentID); err != nil {
			return nil, err
		}
	}
	if m.ProductID != nil {
		if _, err := s.ProductRepo.Get(ctx, *m.ProductID); err != nil {
			return nil, err
		}
	}

	if err := s.PriceModifierRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	return &dto.PriceModifierResponse{PriceModifier: m}, nil
}

// GetPriceModifier retrieves a price modifier by ID
func (s *priceModifierService) GetPriceModifier(ctx context.Context, id string) (*dto.PriceModifierResponse, error) {
	m, err := s.PriceModifierRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PriceModifierResponse{PriceModifier: m}, nil
}

// ListPriceModifiers lists price modifiers matching the filter
func (s *priceModifierService) ListPriceModifiers(ctx context.Context, filter *types.PriceModifierFilter) (*dto.ListPriceModifiersResponse, error) {
	if filter == nil {
		filter = types.NewPriceModifierFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	modifiers, err := s.PriceModifierRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PriceModifierRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PriceModifierResponse, len(modifiers))
	for i, m := range modifiers {
		items[i] = &dto.PriceModifierResponse{PriceModifier: m}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdatePriceModifier updates an existing price modifier. Scope and
// discriminators stay as created; the domain Validate run catches updates
// that would put the modifier in an inconsistent state, like a validity
// window on a non promo modifier.
func (s *priceModifierService) UpdatePriceModifier(ctx context.Context, id string, req dto.UpdatePriceModifierRequest) (*dto.PriceModifierResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m, err := s.PriceModifierRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.ModifierType != nil {
		m.ModifierType = *req.ModifierType
	}
	if req.Value != nil {
		m.Value = *req.Value
	}
	if req.Priority != nil {
		m.Priority = *req.Priority
	}
	if req.UsageLimit != nil {
		m.UsageLimit = req.UsageLimit
	}
	if req.ValidFrom != nil {
		m.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		m.ValidUntil = req.ValidUntil
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.PriceModifierRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	return &dto.PriceModifierResponse{PriceModifier: m}, nil
}

// DeletePriceModifier soft deletes a price modifier
func (s *priceModifierService) DeletePriceModifier(ctx context.Context, id string) error {
	if _, err := s.PriceModifierRepo.Get(ctx, id); err != nil {
		return err
	}

	return s.PriceModifierRepo.Delete(ctx, id)
}
