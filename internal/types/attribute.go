package types

import (
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/samber/lo"
)

// AttributeInputType represents how a customer supplies a value for a
// dynamic product attribute.
type AttributeInputType string

const (
	// AttributeInputTypeSelect is a single-choice dropdown
	AttributeInputTypeSelect AttributeInputType = "SELECT"
	// AttributeInputTypeMultiSelect allows multiple selected values
	AttributeInputTypeMultiSelect AttributeInputType = "MULTI_SELECT"
	// AttributeInputTypeText is free text with no pricing effect
	AttributeInputTypeText AttributeInputType = "TEXT"
	// AttributeInputTypeNumber is a numeric input with no pricing effect
	AttributeInputTypeNumber AttributeInputType = "NUMBER"
)

func (t AttributeInputType) String() string {
	return string(t)
}

func (t AttributeInputType) Validate() error {
	allowed := []AttributeInputType{
		AttributeInputTypeSelect,
		AttributeInputTypeMultiSelect,
		AttributeInputTypeText,
		AttributeInputTypeNumber,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid attribute input type").
			WithHint("Please provide a valid attribute input type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AttributeRuleAction represents what a matched attribute rule does.
// Only TRIGGER_PRICING feeds the pricing engine; the rest drive the
// storefront configurator UI.
type AttributeRuleAction string

const (
	AttributeRuleActionShow           AttributeRuleAction = "SHOW"
	AttributeRuleActionHide           AttributeRuleAction = "HIDE"
	AttributeRuleActionSetDefault     AttributeRuleAction = "SET_DEFAULT"
	AttributeRuleActionTriggerPricing AttributeRuleAction = "TRIGGER_PRICING"
)

func (a AttributeRuleAction) String() string {
	return string(a)
}

func (a AttributeRuleAction) Validate() error {
	allowed := []AttributeRuleAction{
		AttributeRuleActionShow,
		AttributeRuleActionHide,
		AttributeRuleActionSetDefault,
		AttributeRuleActionTriggerPricing,
	}
	if !lo.Contains(allowed, a) {
		return ierr.NewError("invalid attribute rule action").
			WithHint("Please provide a valid attribute rule action").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AttributeTypeFilter defines the filter criteria for attribute types
type AttributeTypeFilter struct {
	*QueryFilter

	InputType *AttributeInputType `json:"input_type,omitempty" form:"input_type"`
	Name      *string             `json:"name,omitempty" form:"name"`
}

func NewAttributeTypeFilter() *AttributeTypeFilter {
	return &AttributeTypeFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitAttributeTypeFilter() *AttributeTypeFilter {
	return &AttributeTypeFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *AttributeTypeFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.InputType != nil {
		if err := f.InputType.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *AttributeTypeFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *AttributeTypeFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *AttributeTypeFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

// AttributeRuleFilter defines the filter criteria for attribute rules
type AttributeRuleFilter struct {
	*QueryFilter

	ProductID       *string              `json:"product_id,omitempty" form:"product_id"`
	AttributeTypeID *string              `json:"attribute_type_id,omitempty" form:"attribute_type_id"`
	Action          *AttributeRuleAction `json:"action,omitempty" form:"action"`
}

func NewAttributeRuleFilter() *AttributeRuleFilter {
	return &AttributeRuleFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitAttributeRuleFilter() *AttributeRuleFilter {
	return &AttributeRuleFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *AttributeRuleFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.Action != nil {
		if err := f.Action.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *AttributeRuleFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *AttributeRuleFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *AttributeRuleFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

func (f *AttributeTypeFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *AttributeTypeFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *AttributeTypeFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}

func (f *AttributeRuleFilter) GetSort() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *AttributeRuleFilter) GetOrder() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *AttributeRuleFilter) GetStatus() string {
	if f == nil || f.QueryFilter == nil {
		return FILTER_DEFAULT_STATUS
	}
	return f.QueryFilter.GetStatus()
}
