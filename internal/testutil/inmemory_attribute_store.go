package testutil

import (
	"context"
	"sort"
	"strings"

	"github.com/printprice/printprice/internal/domain/attribute"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/samber/lo"
)

// InMemoryAttributeStore implements attribute.Repository
type InMemoryAttributeStore struct {
	attrTypes *InMemoryStore[*attribute.AttributeType]
	values    *InMemoryStore[*attribute.AttributeValue]
	rules     *InMemoryStore[*attribute.AttributeRule]
}

func NewInMemoryAttributeStore() *InMemoryAttributeStore {
	return &InMemoryAttributeStore{
		attrTypes: NewInMemoryStore[*attribute.AttributeType](),
		values:    NewInMemoryStore[*attribute.AttributeValue](),
		rules:     NewInMemoryStore[*attribute.AttributeRule](),
	}
}

func copyAttributeType(t *attribute.AttributeType) *attribute.AttributeType {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func copyAttributeValue(v *attribute.AttributeValue) *attribute.AttributeValue {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func copyAttributeRule(r *attribute.AttributeRule) *attribute.AttributeRule {
	if r == nil {
		return nil
	}
	copied := *r
	copied.PricingSignal = append(attribute.JSONBStringList{}, r.PricingSignal...)
	return &copied
}

func (s *InMemoryAttributeStore) CreateType(ctx context.Context, t *attribute.AttributeType) error {
	if t == nil {
		return ierr.NewError("attribute type cannot be nil").
			WithHint("Attribute type cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.attrTypes.Create(ctx, t.ID, copyAttributeType(t))
}

func (s *InMemoryAttributeStore) GetType(ctx context.Context, id string) (*attribute.AttributeType, error) {
	t, err := s.attrTypes.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("attribute type not found").
			WithHintf("Attribute type with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyAttributeType(t), nil
}

func (s *InMemoryAttributeStore) ListTypes(ctx context.Context, filter *types.AttributeTypeFilter) ([]*attribute.AttributeType, error) {
	items, err := s.attrTypes.List(ctx, filter, attributeTypeFilterFn, attributeTypeSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(t *attribute.AttributeType, _ int) *attribute.AttributeType {
		return copyAttributeType(t)
	}), nil
}

func (s *InMemoryAttributeStore) CountTypes(ctx context.Context, filter *types.AttributeTypeFilter) (int, error) {
	return s.attrTypes.Count(ctx, filter, attributeTypeFilterFn)
}

func (s *InMemoryAttributeStore) UpdateType(ctx context.Context, t *attribute.AttributeType) error {
	if t == nil {
		return ierr.NewError("attribute type cannot be nil").
			WithHint("Attribute type cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.attrTypes.Update(ctx, t.ID, copyAttributeType(t))
}

func (s *InMemoryAttributeStore) DeleteType(ctx context.Context, id string) error {
	return s.attrTypes.Delete(ctx, id)
}

func (s *InMemoryAttributeStore) CreateValue(ctx context.Context, v *attribute.AttributeValue) error {
	if v == nil {
		return ierr.NewError("attribute value cannot be nil").
			WithHint("Attribute value cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.values.Create(ctx, v.ID, copyAttributeValue(v))
}

func (s *InMemoryAttributeStore) GetValue(ctx context.Context, id string) (*attribute.AttributeValue, error) {
	v, err := s.values.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("attribute value not found").
			WithHintf("Attribute value with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyAttributeValue(v), nil
}

func (s *InMemoryAttributeStore) ListValues(ctx context.Context, attributeTypeID string, productID string) ([]*attribute.AttributeValue, error) {
	items, err := s.values.List(ctx, nil, func(ctx context.Context, v *attribute.AttributeValue, _ interface{}) bool {
		if v == nil ||
			v.TenantID != types.GetTenantID(ctx) ||
			v.Status != types.StatusPublished ||
			v.AttributeTypeID != attributeTypeID {
			return false
		}
		if productID == "" {
			return v.ProductID == nil
		}
		return v.ProductID == nil || *v.ProductID == productID
	}, nil)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Value < items[j].Value
	})

	return lo.Map(items, func(v *attribute.AttributeValue, _ int) *attribute.AttributeValue {
		return copyAttributeValue(v)
	}), nil
}

func (s *InMemoryAttributeStore) UpdateValue(ctx context.Context, v *attribute.AttributeValue) error {
	if v == nil {
		return ierr.NewError("attribute value cannot be nil").
			WithHint("Attribute value cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.values.Update(ctx, v.ID, copyAttributeValue(v))
}

func (s *InMemoryAttributeStore) DeleteValue(ctx context.Context, id string) error {
	return s.values.Delete(ctx, id)
}

func (s *InMemoryAttributeStore) CreateRule(ctx context.Context, r *attribute.AttributeRule) error {
	if r == nil {
		return ierr.NewError("attribute rule cannot be nil").
			WithHint("Attribute rule cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.rules.Create(ctx, r.ID, copyAttributeRule(r))
}

func (s *InMemoryAttributeStore) GetRule(ctx context.Context, id string) (*attribute.AttributeRule, error) {
	r, err := s.rules.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("attribute rule not found").
			WithHintf("Attribute rule with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyAttributeRule(r), nil
}

func (s *InMemoryAttributeStore) ListRules(ctx context.Context, filter *types.AttributeRuleFilter) ([]*attribute.AttributeRule, error) {
	items, err := s.rules.List(ctx, filter, attributeRuleFilterFn, attributeRuleSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(r *attribute.AttributeRule, _ int) *attribute.AttributeRule {
		return copyAttributeRule(r)
	}), nil
}

func (s *InMemoryAttributeStore) CountRules(ctx context.Context, filter *types.AttributeRuleFilter) (int, error) {
	return s.rules.Count(ctx, filter, attributeRuleFilterFn)
}

func (s *InMemoryAttributeStore) UpdateRule(ctx context.Context, r *attribute.AttributeRule) error {
	if r == nil {
		return ierr.NewError("attribute rule cannot be nil").
			WithHint("Attribute rule cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.rules.Update(ctx, r.ID, copyAttributeRule(r))
}

func (s *InMemoryAttributeStore) DeleteRule(ctx context.Context, id string) error {
	return s.rules.Delete(ctx, id)
}

// Clear wipes types, values and rules
func (s *InMemoryAttributeStore) Clear() {
	s.attrTypes.Clear()
	s.values.Clear()
	s.rules.Clear()
}

func attributeTypeFilterFn(ctx context.Context, t *attribute.AttributeType, filter interface{}) bool {
	if t == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && t.TenantID != tenantID {
		return false
	}

	if t.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.AttributeTypeFilter)
	if !ok || f == nil {
		return true
	}

	if f.InputType != nil && t.InputType != *f.InputType {
		return false
	}

	if f.Name != nil && *f.Name != "" &&
		!strings.Contains(strings.ToLower(t.Name), strings.ToLower(*f.Name)) {
		return false
	}

	return true
}

func attributeTypeSortFn(i, j *attribute.AttributeType) bool {
	return i.Name < j.Name
}

func attributeRuleFilterFn(ctx context.Context, r *attribute.AttributeRule, filter interface{}) bool {
	if r == nil {
		return false
	}

	tenantID := types.GetTenantID(ctx)
	if tenantID != "" && r.TenantID != tenantID {
		return false
	}

	if r.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.AttributeRuleFilter)
	if !ok || f == nil {
		return true
	}

	if f.ProductID != nil {
		if r.ProductID != nil && *r.ProductID != *f.ProductID {
			return false
		}
	}

	if f.AttributeTypeID != nil && r.WhenAttributeTypeID != *f.AttributeTypeID {
		return false
	}

	if f.Action != nil && r.Action != *f.Action {
		return false
	}

	return true
}

func attributeRuleSortFn(i, j *attribute.AttributeRule) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}
