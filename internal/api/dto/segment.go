package dto

import (
	"github.com/printprice/printprice/internal/domain/segment"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
)

// CreateUserSegmentRequest represents the request to create a new user segment
type CreateUserSegmentRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// UpdateUserSegmentRequest represents the request to update an existing segment
type UpdateUserSegmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AssignUserSegmentRequest represents the request to bind a user to a segment
type AssignUserSegmentRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the CreateUserSegmentRequest
func (r *CreateUserSegmentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Validate validates the UpdateUserSegmentRequest
func (r *UpdateUserSegmentRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a segment name").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Validate validates the AssignUserSegmentRequest
func (r *AssignUserSegmentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToUserSegment converts the request to a segment domain object
func (r *CreateUserSegmentRequest) ToUserSegment(baseModel types.BaseModel) *segment.UserSegment {
	return &segment.UserSegment{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER_SEGMENT),
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		BaseModel:   baseModel,
	}
}

// UserSegmentResponse represents the response for user segment data
type UserSegmentResponse struct {
	*segment.UserSegment `json:",inline"`
}

// ListUserSegmentsResponse represents the response for listing user segments
type ListUserSegmentsResponse = types.ListResponse[*UserSegmentResponse]
