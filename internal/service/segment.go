package service

import (
	"context"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/segment"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
)

// UserSegmentService defines the interface for user segment operations
type UserSegmentService interface {
	CreateUserSegment(ctx context.Context, req dto.CreateUserSegmentRequest) (*dto.UserSegmentResponse, error)
	GetUserSegment(ctx context.Context, id string) (*dto.UserSegmentResponse, error)
	ListUserSegments(ctx context.Context, filter *types.UserSegmentFilter) (*dto.ListUserSegmentsResponse, error)
	UpdateUserSegment(ctx context.Context, id string, req dto.UpdateUserSegmentRequest) (*dto.UserSegmentResponse, error)
	DeleteUserSegment(ctx context.Context, id string) error

	// SetDefault promotes the segment to the guest fallback, demoting the
	// previous default in the same transaction.
	SetDefault(ctx context.Context, id string) (*dto.UserSegmentResponse, error)

	// AssignUser binds a user to the segment, replacing any previous binding.
	AssignUser(ctx context.Context, segmentID string, req dto.AssignUserSegmentRequest) error

	// Resolve returns the segment for a user, falling back to the default
	// segment when the user is empty or carries no assignment.
	Resolve(ctx context.Context, userID string) (*segment.UserSegment, error)
}

type userSegmentService struct {
	ServiceParams
}

// NewUserSegmentService creates a new user segment service
func NewUserSegmentService(params ServiceParams) UserSegmentService {
	return &userSegmentService{
		ServiceParams: params,
	}
}

// CreateUserSegment creates a new user segment
func (s *userSegmentService) CreateUserSegment(ctx context.Context, req dto.CreateUserSegmentRequest) (*dto.UserSegmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.UserSegmentRepo.GetByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, ierr.NewError("segment code already exists").
			WithHintf("A segment with code %s already exists", req.Code).
			WithReportableDetails(map[string]any{
				"code": req.Code,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	seg := req.ToUserSegment(types.GetDefaultBaseModel(ctx))

	if err := s.UserSegmentRepo.Create(ctx, seg); err != nil {
		return nil, err
	}

	// A segment created as default takes over from the previous one
	// immediately, keeping exactly one default per tenant.
	if seg.IsDefault {
		if err := s.UserSegmentRepo.SetDefault(ctx, seg.ID); err != nil {
			return nil, err
		}
	}

	return &dto.UserSegmentResponse{UserSegment: seg}, nil
}

// GetUserSegment retrieves a user segment by ID
func (s *userSegmentService) GetUserSegment(ctx context.Context, id string) (*dto.UserSegmentResponse, error) {
	seg, err := s.UserSegmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.UserSegmentResponse{UserSegment: seg}, nil
}

// ListUserSegments lists user segments matching the filter
func (s *userSegmentService) ListUserSegments(ctx context.Context, filter *types.UserSegmentFilter) (*dto.ListUserSegmentsResponse, error) {
	if filter == nil {
		filter = types.NewUserSegmentFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	segments, err := s.UserSegmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.UserSegmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.UserSegmentResponse, len(segments))
	for i, seg := range segments {
		items[i] = &dto.UserSegmentResponse{UserSegment: seg}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdateUserSegment updates an existing user segment
func (s *userSegmentService) UpdateUserSegment(ctx context.Context, id string, req dto.UpdateUserSegmentRequest) (*dto.UserSegmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	seg, err := s.UserSegmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		seg.Name = *req.Name
	}
	if req.Description != nil {
		seg.Description = *req.Description
	}

	if err := s.UserSegmentRepo.Update(ctx, seg); err != nil {
		return nil, err
	}

	return &dto.UserSegmentResponse{UserSegment: seg}, nil
}

// DeleteUserSegment soft deletes a user segment. The default segment cannot
// be deleted: guests would be left with no pricing tier at all.
func (s *userSegmentService) DeleteUserSegment(ctx context.Context, id string) error {
	seg, err := s.UserSegmentRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if seg.IsDefault {
		return ierr.NewError("default segment cannot be deleted").
			WithHint("Promote another segment to default before deleting this one").
			WithReportableDetails(map[string]any{
				"segment_id": id,
			}).
			Mark(ierr.ErrValidation)
	}

	return s.UserSegmentRepo.Delete(ctx, id)
}

// SetDefault promotes the segment to the guest fallback
func (s *userSegmentService) SetDefault(ctx context.Context, id string) (*dto.UserSegmentResponse, error) {
	if _, err := s.UserSegmentRepo.Get(ctx, id); err != nil {
		return nil, err
	}

	if err := s.UserSegmentRepo.SetDefault(ctx, id); err != nil {
		return nil, err
	}

	seg, err := s.UserSegmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.UserSegmentResponse{UserSegment: seg}, nil
}

// AssignUser binds a user to the segment
func (s *userSegmentService) AssignUser(ctx context.Context, segmentID string, req dto.AssignUserSegmentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.UserSegmentRepo.Get(ctx, segmentID); err != nil {
		return err
	}

	return s.UserSegmentRepo.AssignUser(ctx, req.UserID, segmentID)
}

// Resolve returns the pricing segment for the user. Guests and users without
// an assignment resolve to the default segment, so pricing never runs without
// a tier.
func (s *userSegmentService) Resolve(ctx context.Context, userID string) (*segment.UserSegment, error) {
	if userID == "" {
		return s.UserSegmentRepo.GetDefault(ctx)
	}

	seg, err := s.UserSegmentRepo.GetByUser(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return s.UserSegmentRepo.GetDefault(ctx)
		}
		return nil, err
	}

	return seg, nil
}
