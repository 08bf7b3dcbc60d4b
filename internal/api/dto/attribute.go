package dto

import (
	"github.com/printprice/printprice/internal/domain/attribute"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
)

// CreateAttributeTypeRequest represents the request to create an attribute type
type CreateAttributeTypeRequest struct {
	Name        string                   `json:"name" validate:"required"`
	DisplayName string                   `json:"display_name" validate:"required"`
	InputType   types.AttributeInputType `json:"input_type" validate:"required"`
	IsRequired  bool                     `json:"is_required"`
}

// UpdateAttributeTypeRequest represents the request to update an attribute type
type UpdateAttributeTypeRequest struct {
	DisplayName *string                   `json:"display_name,omitempty"`
	InputType   *types.AttributeInputType `json:"input_type,omitempty"`
	IsRequired  *bool                     `json:"is_required,omitempty"`
}

// Validate validates the CreateAttributeTypeRequest
func (r *CreateAttributeTypeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	return r.InputType.Validate()
}

// Validate validates the UpdateAttributeTypeRequest
func (r *UpdateAttributeTypeRequest) Validate() error {
	if r.DisplayName != nil && *r.DisplayName == "" {
		return ierr.NewError("display_name must not be empty").
			WithHint("Please provide a display name").
			Mark(ierr.ErrValidation)
	}

	if r.InputType != nil {
		return r.InputType.Validate()
	}

	return nil
}

// ToAttributeType converts the request to an attribute type domain object
func (r *CreateAttributeTypeRequest) ToAttributeType(baseModel types.BaseModel) *attribute.AttributeType {
	return &attribute.AttributeType{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ATTRIBUTE_TYPE),
		Name:        r.Name,
		DisplayName: r.DisplayName,
		InputType:   r.InputType,
		IsRequired:  r.IsRequired,
		BaseModel:   baseModel,
	}
}

// AttributeTypeResponse represents the response for attribute type data
type AttributeTypeResponse struct {
	*attribute.AttributeType `json:",inline"`
}

// ListAttributeTypesResponse represents the response for listing attribute types
type ListAttributeTypesResponse = types.ListResponse[*AttributeTypeResponse]

// CreateAttributeValueRequest represents the request to add a value to an
// attribute type. The attribute type id comes from the URL path.
type CreateAttributeValueRequest struct {
	ProductID    *string `json:"product_id,omitempty"`
	Value        string  `json:"value" validate:"required"`
	DisplayLabel string  `json:"display_label,omitempty"`
	PricingKey   string  `json:"pricing_key,omitempty"`
	SortOrder    int     `json:"sort_order"`
}

// Validate validates the CreateAttributeValueRequest
func (r *CreateAttributeValueRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToAttributeValue converts the request to an attribute value domain object
func (r *CreateAttributeValueRequest) ToAttributeValue(attributeTypeID string, baseModel types.BaseModel) *attribute.AttributeValue {
	label := r.DisplayLabel
	if label == "" {
		label = r.Value
	}

	return &attribute.AttributeValue{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ATTRIBUTE_VALUE),
		AttributeTypeID: attributeTypeID,
		ProductID:       r.ProductID,
		Value:           r.Value,
		DisplayLabel:    label,
		PricingKey:      r.PricingKey,
		SortOrder:       r.SortOrder,
		BaseModel:       baseModel,
	}
}

// UpdateAttributeValueRequest represents the request to update an attribute
// value. The value string itself is immutable: selections match on it, so
// changing it would silently orphan saved configurations. Create a new value
// instead.
type UpdateAttributeValueRequest struct {
	DisplayLabel *string `json:"display_label,omitempty"`
	PricingKey   *string `json:"pricing_key,omitempty"`
	SortOrder    *int    `json:"sort_order,omitempty"`
}

// Validate validates the UpdateAttributeValueRequest
func (r *UpdateAttributeValueRequest) Validate() error {
	if r.DisplayLabel != nil && *r.DisplayLabel == "" {
		return ierr.NewError("display_label must not be empty").
			WithHint("Please provide a display label").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// AttributeValueResponse represents the response for attribute value data
type AttributeValueResponse struct {
	*attribute.AttributeValue `json:",inline"`
}

// ListAttributeValuesResponse represents the response for listing values
type ListAttributeValuesResponse struct {
	Items []*AttributeValueResponse `json:"items"`
	Total int                       `json:"total"`
}

// CreateAttributeRuleRequest represents the request to create an attribute rule
type CreateAttributeRuleRequest struct {
	Name                  string                    `json:"name" validate:"required"`
	ProductID             *string                   `json:"product_id,omitempty"`
	WhenAttributeTypeID   string                    `json:"when_attribute_type_id"`
	WhenValue             string                    `json:"when_value"`
	Action                types.AttributeRuleAction `json:"action" validate:"required"`
	TargetAttributeTypeID *string                   `json:"target_attribute_type_id,omitempty"`
	TargetValue           *string                   `json:"target_value,omitempty"`
	PricingSignal         []string                  `json:"pricing_signal,omitempty"`
}

// Validate validates the CreateAttributeRuleRequest
func (r *CreateAttributeRuleRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	// The when pair forms the rule condition; half a condition matches
	// nothing.
	if r.WhenAttributeTypeID == "" || r.WhenValue == "" {
		return ierr.NewError("rule condition is required").
			WithHint("Please provide when_attribute_type_id and when_value").
			Mark(ierr.ErrValidation)
	}

	if err := r.Action.Validate(); err != nil {
		return err
	}

	switch r.Action {
	case types.AttributeRuleActionTriggerPricing:
		if len(r.PricingSignal) == 0 {
			return ierr.NewError("pricing_signal is required for TRIGGER_PRICING rules").
				WithHint("Please provide at least one pricing key to inject").
				Mark(ierr.ErrValidation)
		}
	case types.AttributeRuleActionSetDefault:
		if r.TargetAttributeTypeID == nil || r.TargetValue == nil {
			return ierr.NewError("target is required for SET_DEFAULT rules").
				WithHint("Please provide target_attribute_type_id and target_value").
				Mark(ierr.ErrValidation)
		}
	default:
		if r.TargetAttributeTypeID == nil {
			return ierr.NewError("target is required for SHOW and HIDE rules").
				WithHint("Please provide target_attribute_type_id").
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// ToAttributeRule converts the request to an attribute rule domain object
func (r *CreateAttributeRuleRequest) ToAttributeRule(baseModel types.BaseModel) *attribute.AttributeRule {
	return &attribute.AttributeRule{
		ID:                    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ATTRIBUTE_RULE),
		Name:                  r.Name,
		ProductID:             r.ProductID,
		WhenAttributeTypeID:   r.WhenAttributeTypeID,
		WhenValue:             r.WhenValue,
		Action:                r.Action,
		TargetAttributeTypeID: r.TargetAttributeTypeID,
		TargetValue:           r.TargetValue,
		PricingSignal:         attribute.JSONBStringList(r.PricingSignal),
		BaseModel:             baseModel,
	}
}

// UpdateAttributeRuleRequest represents the request to update an attribute
// rule. The condition and action are immutable after creation; create a new
// rule to retarget one.
type UpdateAttributeRuleRequest struct {
	Name          *string  `json:"name,omitempty"`
	PricingSignal []string `json:"pricing_signal,omitempty"`
}

// Validate validates the UpdateAttributeRuleRequest
func (r *UpdateAttributeRuleRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Please provide a rule name").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// AttributeRuleResponse represents the response for attribute rule data
type AttributeRuleResponse struct {
	*attribute.AttributeRule `json:",inline"`
}

// ListAttributeRulesResponse represents the response for listing rules
type ListAttributeRulesResponse = types.ListResponse[*AttributeRuleResponse]
