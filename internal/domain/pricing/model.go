package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/printprice/printprice/internal/types"
	"github.com/shopspring/decimal"
)

// AppliedModifier records one modifier's effect on the running price. The
// ordered list of applied modifiers is the itemized explanation of how the
// final price came out, kept verbatim on the snapshot for audit.
type AppliedModifier struct {
	// ModifierID references the applied PriceModifier
	ModifierID string `json:"modifier_id"`

	// Scope is the modifier's scope at application time
	Scope types.ModifierScope `json:"scope"`

	// PricingKey is set for ATTRIBUTE scope modifiers, the key that matched
	PricingKey string `json:"pricing_key,omitempty"`

	// BeforeAmount and AfterAmount bracket the modifier's effect on the
	// running unit price
	BeforeAmount decimal.Decimal `json:"before_amount"`
	AfterAmount  decimal.Decimal `json:"after_amount"`

	// Reason is the human readable explanation shown on admin audit views
	Reason string `json:"reason"`
}

// JSONBAppliedModifiers is the jsonb column holding the ordered applied
// modifier list
type JSONBAppliedModifiers []AppliedModifier

// PriceSnapshot is the immutable point-in-time pricing result attached to an
// order. Once written it is never updated; repricing creates a new snapshot.
type PriceSnapshot struct {
	// ID uuid identifier for the snapshot
	ID string `db:"id" json:"id"`

	// OrderID is the order this snapshot prices
	OrderID string `db:"order_id" json:"order_id"`

	// ProductID is the priced product
	ProductID string `db:"product_id" json:"product_id"`

	// BasePrice is the price book entry price modifiers started from
	BasePrice decimal.Decimal `db:"base_price" json:"base_price"`

	// UnitPrice is the per-unit price after all modifiers
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`

	// Quantity ordered
	Quantity int `db:"quantity" json:"quantity"`

	// AppliedModifiers is the ordered modifier audit trail
	AppliedModifiers JSONBAppliedModifiers `db:"applied_modifiers,jsonb" json:"applied_modifiers"`

	// Subtotal before tax
	Subtotal decimal.Decimal `db:"subtotal" json:"subtotal"`

	// GSTPercentage and GSTAmount carry the tax breakdown
	GSTPercentage decimal.Decimal `db:"gst_percentage" json:"gst_percentage"`
	GSTAmount     decimal.Decimal `db:"gst_amount" json:"gst_amount"`

	// TotalPayable is the final charged amount
	TotalPayable decimal.Decimal `db:"total_payable" json:"total_payable"`

	// Currency 3 letter ISO code ex INR
	Currency string `db:"currency" json:"currency"`

	// CalculatedAt is when the price was resolved
	CalculatedAt time.Time `db:"calculated_at" json:"calculated_at"`

	types.BaseModel
}

// CalculationLog is one append-only audit row per applied modifier per
// snapshot, written in the same transaction as the snapshot so the two can
// never disagree.
type CalculationLog struct {
	// ID uuid identifier for the log row
	ID string `db:"id" json:"id"`

	// SnapshotID references the owning snapshot
	SnapshotID string `db:"snapshot_id" json:"snapshot_id"`

	// OrderID duplicates the snapshot's order for direct lookup
	OrderID string `db:"order_id" json:"order_id"`

	// StepIndex is the zero-based application position of the modifier
	StepIndex int `db:"step_index" json:"step_index"`

	// ModifierID references the applied PriceModifier
	ModifierID string `db:"modifier_id" json:"modifier_id"`

	// Scope is the modifier's scope at application time
	Scope types.ModifierScope `db:"scope" json:"scope"`

	// PricingKey for ATTRIBUTE scope applications
	PricingKey string `db:"pricing_key" json:"pricing_key"`

	// BeforeAmount and AfterAmount bracket the step
	BeforeAmount decimal.Decimal `db:"before_amount" json:"before_amount"`
	AfterAmount  decimal.Decimal `db:"after_amount" json:"after_amount"`

	// Reason is the human readable explanation for the step
	Reason string `db:"reason" json:"reason"`

	types.BaseModel
}

// Scanner/Valuer implementations for JSONBAppliedModifiers
func (j *JSONBAppliedModifiers) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for jsonb applied modifiers")
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONBAppliedModifiers) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}
