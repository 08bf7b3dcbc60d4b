package attribute

import (
	"context"

	"github.com/printprice/printprice/internal/types"
)

// Repository defines the interface for attribute data access
type Repository interface {
	CreateType(ctx context.Context, attributeType *AttributeType) error
	GetType(ctx context.Context, id string) (*AttributeType, error)
	ListTypes(ctx context.Context, filter *types.AttributeTypeFilter) ([]*AttributeType, error)
	CountTypes(ctx context.Context, filter *types.AttributeTypeFilter) (int, error)
	UpdateType(ctx context.Context, attributeType *AttributeType) error
	DeleteType(ctx context.Context, id string) error

	CreateValue(ctx context.Context, value *AttributeValue) error
	GetValue(ctx context.Context, id string) (*AttributeValue, error)
	UpdateValue(ctx context.Context, value *AttributeValue) error
	DeleteValue(ctx context.Context, id string) error

	// ListValues returns values of the attribute type: the type-level
	// defaults plus, when productID is non empty, the product's overrides
	ListValues(ctx context.Context, attributeTypeID string, productID string) ([]*AttributeValue, error)

	CreateRule(ctx context.Context, rule *AttributeRule) error
	GetRule(ctx context.Context, id string) (*AttributeRule, error)
	ListRules(ctx context.Context, filter *types.AttributeRuleFilter) ([]*AttributeRule, error)
	CountRules(ctx context.Context, filter *types.AttributeRuleFilter) (int, error)
	UpdateRule(ctx context.Context, rule *AttributeRule) error
	DeleteRule(ctx context.Context, id string) error
}
