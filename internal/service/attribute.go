package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/printprice/printprice/internal/api/dto"
	"github.com/printprice/printprice/internal/domain/attribute"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// AttributeService defines the interface for attribute operations
type AttributeService interface {
	CreateAttributeType(ctx context.Context, req dto.CreateAttributeTypeRequest) (*dto.AttributeTypeResponse, error)
	GetAttributeType(ctx context.Context, id string) (*dto.AttributeTypeResponse, error)
	ListAttributeTypes(ctx context.Context, filter *types.AttributeTypeFilter) (*dto.ListAttributeTypesResponse, error)
	UpdateAttributeType(ctx context.Context, id string, req dto.UpdateAttributeTypeRequest) (*dto.AttributeTypeResponse, error)
	DeleteAttributeType(ctx context.Context, id string) error

	CreateValue(ctx context.Context, attributeTypeID string, req dto.CreateAttributeValueRequest) (*dto.AttributeValueResponse, error)
	ListValues(ctx context.Context, attributeTypeID string, productID string) (*dto.ListAttributeValuesResponse, error)
	UpdateValue(ctx context.Context, id string, req dto.UpdateAttributeValueRequest) (*dto.AttributeValueResponse, error)
	DeleteValue(ctx context.Context, id string) error

	CreateRule(ctx context.Context, req dto.CreateAttributeRuleRequest) (*dto.AttributeRuleResponse, error)
	GetRule(ctx context.Context, id string) (*dto.AttributeRuleResponse, error)
	ListRules(ctx context.Context, filter *types.AttributeRuleFilter) (*dto.ListAttributeRulesResponse, error)
	UpdateRule(ctx context.Context, id string, req dto.UpdateAttributeRuleRequest) (*dto.AttributeRuleResponse, error)
	DeleteRule(ctx context.Context, id string) error

	// ExtractSignals turns a configurator selection map into the flat signal
	// list the pricing engine consumes. Selections are keyed by attribute
	// name; multi-select selections expand to one signal per value.
	ExtractSignals(ctx context.Context, productID string, selections map[string]any) ([]attribute.Signal, error)
}

type attributeService struct {
	ServiceParams
}

// NewAttributeService creates a new attribute service
func NewAttributeService(params ServiceParams) AttributeService {
	return &attributeService{
		ServiceParams: params,
	}
}

// CreateAttributeType creates a new attribute type
func (s *attributeService) CreateAttributeType(ctx context.Context, req dto.CreateAttributeTypeRequest) (*dto.AttributeTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	attributeType := req.ToAttributeType(types.GetDefaultBaseModel(ctx))

	if err := s.AttributeRepo.CreateType(ctx, attributeType); err != nil {
		return nil, err
	}

	return &dto.AttributeTypeResponse{AttributeType: attributeType}, nil
}

// GetAttributeType retrieves an attribute type by ID
func (s *attributeService) GetAttributeType(ctx context.Context, id string) (*dto.AttributeTypeResponse, error) {
	attributeType, err := s.AttributeRepo.GetType(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.AttributeTypeResponse{AttributeType: attributeType}, nil
}

// ListAttributeTypes lists attribute types matching the filter
func (s *attributeService) ListAttributeTypes(ctx context.Context, filter *types.AttributeTypeFilter) (*dto.ListAttributeTypesResponse, error) {
	if filter == nil {
		filter = types.NewAttributeTypeFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	attributeTypes, err := s.AttributeRepo.ListTypes(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.AttributeRepo.CountTypes(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AttributeTypeResponse, len(attributeTypes))
	for i, attributeType := range attributeTypes {
		items[i] = &dto.AttributeTypeResponse{AttributeType: attributeType}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdateAttributeType updates an existing attribute type
func (s *attributeService) UpdateAttributeType(ctx context.Context, id string, req dto.UpdateAttributeTypeRequest) (*dto.AttributeTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	attributeType, err := s.AttributeRepo.GetType(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		attributeType.DisplayName = *req.DisplayName
	}
	if req.InputType != nil {
		attributeType.InputType = *req.InputType
	}
	if req.IsRequired != nil {
		attributeType.IsRequired = *req.IsRequired
	}

	if err := s.AttributeRepo.UpdateType(ctx, attributeType); err != nil {
		return nil, err
	}

	return &dto.AttributeTypeResponse{AttributeType: attributeType}, nil
}

// DeleteAttributeType soft deletes an attribute type
func (s *attributeService) DeleteAttributeType(ctx context.Context, id string) error {
	if _, err := s.AttributeRepo.GetType(ctx, id); err != nil {
		return err
	}

	return s.AttributeRepo.DeleteType(ctx, id)
}

// CreateValue adds a value to an attribute type
func (s *attributeService) CreateValue(ctx context.Context, attributeTypeID string, req dto.CreateAttributeValueRequest) (*dto.AttributeValueResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.AttributeRepo.GetType(ctx, attributeTypeID); err != nil {
		return nil, err
	}

	if req.ProductID != nil {
		if _, err := s.ProductRepo.Get(ctx, *req.ProductID); err != nil {
			return nil, err
		}
	}

	value := req.ToAttributeValue(attributeTypeID, types.GetDefaultBaseModel(ctx))

	if err := s.AttributeRepo.CreateValue(ctx, value); err != nil {
		return nil, err
	}

	return &dto.AttributeValueResponse{AttributeValue: value}, nil
}

// ListValues lists the values of an attribute type: type-level defaults plus
// the product's overrides when productID is non empty
func (s *attributeService) ListValues(ctx context.Context, attributeTypeID string, productID string) (*dto.ListAttributeValuesResponse, error) {
	if _, err := s.AttributeRepo.GetType(ctx, attributeTypeID); err != nil {
		return nil, err
	}

	values, err := s.AttributeRepo.ListValues(ctx, attributeTypeID, productID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AttributeValueResponse, len(values))
	for i, value := range values {
		items[i] = &dto.AttributeValueResponse{AttributeValue: value}
	}

	return &dto.ListAttributeValuesResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// UpdateValue updates an existing attribute value
func (s *attributeService) UpdateValue(ctx context.Context, id string, req dto.UpdateAttributeValueRequest) (*dto.AttributeValueResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	value, err := s.AttributeRepo.GetValue(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayLabel != nil {
		value.DisplayLabel = *req.DisplayLabel
	}
	if req.PricingKey != nil {
		value.PricingKey = *req.PricingKey
	}
	if req.SortOrder != nil {
		value.SortOrder = *req.SortOrder
	}

	if err := s.AttributeRepo.UpdateValue(ctx, value); err != nil {
		return nil, err
	}

	return &dto.AttributeValueResponse{AttributeValue: value}, nil
}

// DeleteValue soft deletes an attribute value
func (s *attributeService) DeleteValue(ctx context.Context, id string) error {
	if _, err := s.AttributeRepo.GetValue(ctx, id); err != nil {
		return err
	}

	return s.AttributeRepo.DeleteValue(ctx, id)
}

// CreateRule creates a new attribute rule
func (s *attributeService) CreateRule(ctx context.Context, req dto.CreateAttributeRuleRequest) (*dto.AttributeRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.AttributeRepo.GetType(ctx, req.WhenAttributeTypeID); err != nil {
		return nil, err
	}
	if req.TargetAttributeTypeID != nil {
		if _, err := s.AttributeRepo.GetType(ctx, *req.TargetAttributeTypeID); err != nil {
			return nil, err
		}
	}
	if req.ProductID != nil {
		if _, err := s.ProductRepo.Get(ctx, *req.ProductID); err != nil {
			return nil, err
		}
	}

	rule := req.ToAttributeRule(types.GetDefaultBaseModel(ctx))

	if err := s.AttributeRepo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return &dto.AttributeRuleResponse{AttributeRule: rule}, nil
}

// GetRule retrieves an attribute rule by ID
func (s *attributeService) GetRule(ctx context.Context, id string) (*dto.AttributeRuleResponse, error) {
	rule, err := s.AttributeRepo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.AttributeRuleResponse{AttributeRule: rule}, nil
}

// ListRules lists attribute rules matching the filter
func (s *attributeService) ListRules(ctx context.Context, filter *types.AttributeRuleFilter) (*dto.ListAttributeRulesResponse, error) {
	if filter == nil {
		filter = types.NewAttributeRuleFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	rules, err := s.AttributeRepo.ListRules(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.AttributeRepo.CountRules(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AttributeRuleResponse, len(rules))
	for i, rule := range rules {
		items[i] = &dto.AttributeRuleResponse{AttributeRule: rule}
	}

	response := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// UpdateRule updates an existing attribute rule. The condition and action
// are immutable; retargeting means creating a new rule.
func (s *attributeService) UpdateRule(ctx context.Context, id string, req dto.UpdateAttributeRuleRequest) (*dto.AttributeRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rule, err := s.AttributeRepo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if len(req.PricingSignal) > 0 {
		if rule.Action != types.AttributeRuleActionTriggerPricing {
			return nil, ierr.NewError("pricing_signal only applies to TRIGGER_PRICING rules").
				WithHintf("Rule %s has action %s", id, rule.Action).
				Mark(ierr.ErrValidation)
		}
		rule.PricingSignal = attribute.JSONBStringList(req.PricingSignal)
	}

	if err := s.AttributeRepo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}

	return &dto.AttributeRuleResponse{AttributeRule: rule}, nil
}

// DeleteRule soft deletes an attribute rule
func (s *attributeService) DeleteRule(ctx context.Context, id string) error {
	if _, err := s.AttributeRepo.GetRule(ctx, id); err != nil {
		return err
	}

	return s.AttributeRepo.DeleteRule(ctx, id)
}

// ExtractSignals flattens a selection map into pricing signals. Attribute
// names and value strings the catalog knows resolve to their pricing key;
// everything else is carried through as a free text signal with no pricing
// key, so an order never loses what the customer chose. TRIGGER_PRICING
// rules matching a selection inject their keys as synthetic signals right
// after the triggering one.
func (s *attributeService) ExtractSignals(ctx context.Context, productID string, selections map[string]any) ([]attribute.Signal, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	attributeTypes, err := s.AttributeRepo.ListTypes(ctx, types.NewNoLimitAttributeTypeFilter())
	if err != nil {
		return nil, err
	}

	typesByName := make(map[string]*attribute.AttributeType, len(attributeTypes))
	for _, attributeType := range attributeTypes {
		typesByName[attributeType.Name] = attributeType
	}

	rules, err := s.AttributeRepo.ListRules(ctx, &types.AttributeRuleFilter{
		QueryFilter: types.NewNoLimitQueryFilter(),
		Action:      lo.ToPtr(types.AttributeRuleActionTriggerPricing),
	})
	if err != nil {
		return nil, err
	}

	// Selection keys are iterated sorted so the same selections always
	// produce the same signal order.
	names := make([]string, 0, len(selections))
	for name := range selections {
		names = append(names, name)
	}
	sort.Strings(names)

	var signals []attribute.Signal
	for _, name := range names {
		attributeType, ok := typesByName[name]
		if !ok {
			for _, value := range selectionValues(selections[name]) {
				signals = append(signals, attribute.Signal{
					AttributeName: name,
					Value:         value,
				})
			}
			continue
		}

		values, err := s.AttributeRepo.ListValues(ctx, attributeType.ID, productID)
		if err != nil {
			return nil, err
		}

		// Product overrides shadow the type level value with the same value
		// string
		valuesByString := make(map[string]*attribute.AttributeValue, len(values))
		for _, value := range values {
			existing, seen := valuesByString[value.Value]
			if !seen || (existing.ProductID == nil && value.ProductID != nil) {
				valuesByString[value.Value] = value
			}
		}

		for _, value := range selectionValues(selections[name]) {
			signal := attribute.Signal{
				AttributeTypeID: attributeType.ID,
				AttributeName:   attributeType.Name,
				Value:           value,
			}
			if catalogValue, found := valuesByString[value]; found {
				signal.PricingKey = catalogValue.PricingKey
			}
			signals = append(signals, signal)

			for _, rule := range rules {
				if !rule.Matches(productID, attributeType.ID, value) {
					continue
				}
				for _, key := range rule.PricingSignal {
					signals = append(signals, attribute.Signal{
						AttributeTypeID: attributeType.ID,
						AttributeName:   attributeType.Name,
						PricingKey:      key,
						Value:           value,
					})
				}
			}
		}
	}

	return signals, nil
}

// selectionValues normalizes one raw selection into its value strings.
// Multi-select selections arrive as arrays and expand to one string each.
func selectionValues(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			values = append(values, selectionString(item))
		}
		return values
	default:
		return []string{selectionString(raw)}
	}
}

func selectionString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode to float64; keep 350 as "350"
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
