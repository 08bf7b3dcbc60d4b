package attribute

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/printprice/printprice/internal/types"
)

// JSONBStringList is a jsonb-backed list of strings
type JSONBStringList []string

// AttributeType is a selectable product option, e.g. "Paper GSM" or
// "Lamination". The type carries presentation and input semantics; pricing
// is linked exclusively through the PricingKey on its values.
type AttributeType struct {
	// ID uuid identifier for the attribute type
	ID string `db:"id" json:"id"`

	// Name is the machine name ex paper_gsm
	Name string `db:"name" json:"name"`

	// DisplayName is the storefront label ex "Paper GSM"
	DisplayName string `db:"display_name" json:"display_name"`

	// InputType controls how the customer supplies the value
	InputType types.AttributeInputType `db:"input_type" json:"input_type"`

	// IsRequired marks attributes the configurator must collect
	IsRequired bool `db:"is_required" json:"is_required"`

	types.BaseModel
}

// AttributeValue is one selectable value of an attribute type. Values carry
// a PricingKey, the only link between a customer's selection and the pricing
// layer; they never carry absolute prices themselves. A value with a
// ProductID is a product-specific override and shadows the type-level value
// with the same Value string for that product.
type AttributeValue struct {
	// ID uuid identifier for the attribute value
	ID string `db:"id" json:"id"`

	// AttributeTypeID references the owning attribute type
	AttributeTypeID string `db:"attribute_type_id" json:"attribute_type_id"`

	// ProductID scopes the value to a product; nil for type-level defaults
	ProductID *string `db:"product_id" json:"product_id"`

	// Value is the canonical stored value ex "350"
	Value string `db:"value" json:"value"`

	// DisplayLabel is the storefront label ex "350 GSM"
	DisplayLabel string `db:"display_label" json:"display_label"`

	// PricingKey is the key price modifiers target ex paper_gsm_350.
	// Empty for values with no pricing effect.
	PricingKey string `db:"pricing_key" json:"pricing_key"`

	// SortOrder orders values in the configurator
	SortOrder int `db:"sort_order" json:"sort_order"`

	types.BaseModel
}

// AttributeRule is conditional logic of the form "when attribute X has value
// V, do something to attribute Y or emit a pricing signal". Only rules with
// action TRIGGER_PRICING feed the pricing engine; the rest drive the
// configurator UI and are carried here so admins manage all rules in one
// place.
type AttributeRule struct {
	// ID uuid identifier for the rule
	ID string `db:"id" json:"id"`

	// Name describes the rule for the admin screen
	Name string `db:"name" json:"name"`

	// ProductID scopes the rule to a product; nil applies to all products
	ProductID *string `db:"product_id" json:"product_id"`

	// WhenAttributeTypeID and WhenValue form the match condition
	WhenAttributeTypeID string `db:"when_attribute_type_id" json:"when_attribute_type_id"`
	WhenValue           string `db:"when_value" json:"when_value"`

	// Action states what happens when the condition matches
	Action types.AttributeRuleAction `db:"action" json:"action"`

	// TargetAttributeTypeID is the attribute acted on for SHOW, HIDE and
	// SET_DEFAULT actions; unused for TRIGGER_PRICING
	TargetAttributeTypeID *string `db:"target_attribute_type_id" json:"target_attribute_type_id"`

	// TargetValue is the value set by SET_DEFAULT actions
	TargetValue *string `db:"target_value" json:"target_value"`

	// PricingSignal lists the synthetic pricing keys a TRIGGER_PRICING rule
	// injects into the extracted signal list
	PricingSignal JSONBStringList `db:"pricing_signal,jsonb" json:"pricing_signal"`

	types.BaseModel
}

// Matches reports whether the rule's condition matches a selected
// (attributeTypeID, value) pair for the given product.
func (r *AttributeRule) Matches(productID string, attributeTypeID string, value string) bool {
	if r.ProductID != nil && *r.ProductID != productID {
		return false
	}
	return r.WhenAttributeTypeID == attributeTypeID && r.WhenValue == value
}

// Scanner/Valuer implementations for JSONBStringList
func (j *JSONBStringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for jsonb string list")
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONBStringList) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}
