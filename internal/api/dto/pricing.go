package dto

import (
	"time"

	"github.com/printprice/printprice/internal/domain/pricing"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/validator"
	"github.com/shopspring/decimal"
)

// PricingRequest represents a price resolution request. UserID is empty for
// guest checkouts; Attributes holds the configurator selections keyed by
// attribute name, with either a single value or a list for multi-select.
// ExpectedTotal optionally carries the client's locally computed estimate;
// the server price always wins, a mismatch only triggers discrepancy
// reporting.
type PricingRequest struct {
	UserID        string           `json:"user_id,omitempty"`
	ProductID     string           `json:"product_id" validate:"required"`
	Pincode       string           `json:"pincode" validate:"required"`
	Attributes    map[string]any   `json:"attributes,omitempty"`
	Quantity      int              `json:"quantity" validate:"min=1"`
	PromoCodes    []string         `json:"promo_codes,omitempty"`
	ExpectedTotal *decimal.Decimal `json:"expected_total,omitempty"`
}

// Validate validates the PricingRequest
func (r *PricingRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if !pincodePattern.MatchString(r.Pincode) {
		return ierr.NewError("pincode must be a 6 digit code").
			WithHint("Please provide a valid delivery pincode").
			WithReportableDetails(map[string]any{
				"pincode": r.Pincode,
			}).
			Mark(ierr.ErrValidation)
	}

	for _, code := range r.PromoCodes {
		if code == "" {
			return ierr.NewError("promo codes must not be empty").
				WithHint("Please remove the empty promo code").
				Mark(ierr.ErrValidation)
		}
	}

	if r.ExpectedTotal != nil && r.ExpectedTotal.LessThan(decimal.Zero) {
		return ierr.NewError("expected_total must not be negative").
			WithHint("Please provide a valid expected total").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// CreatePriceSnapshotRequest represents the request to resolve and persist a
// price for an order
type CreatePriceSnapshotRequest struct {
	PricingRequest `json:",inline"`

	OrderID string `json:"order_id" validate:"required"`
}

// Validate validates the CreatePriceSnapshotRequest
func (r *CreatePriceSnapshotRequest) Validate() error {
	if r.OrderID == "" {
		return ierr.NewError("order_id is required").
			WithHint("Please provide the order to price").
			Mark(ierr.ErrValidation)
	}

	return r.PricingRequest.Validate()
}

// IgnoredPromoCode reports a supplied promo code that was silently dropped
// and why
type IgnoredPromoCode struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// PricingResult is the fully resolved price with its audit trail. The
// applied modifier list explains every step from base price to subtotal.
type PricingResult struct {
	BasePrice         decimal.Decimal           `json:"base_price"`
	UnitPrice         decimal.Decimal           `json:"unit_price"`
	Quantity          int                       `json:"quantity"`
	Subtotal          decimal.Decimal           `json:"subtotal"`
	GSTPercentage     decimal.Decimal           `json:"gst_percentage"`
	GSTAmount         decimal.Decimal           `json:"gst_amount"`
	TotalPayable      decimal.Decimal           `json:"total_payable"`
	Currency          string                    `json:"currency"`
	DisplayTotal      string                    `json:"display_total"`
	AppliedModifiers  []pricing.AppliedModifier `json:"applied_modifiers"`
	IgnoredPromoCodes []IgnoredPromoCode        `json:"ignored_promo_codes,omitempty"`
	ZoneChain         []string                  `json:"zone_chain"`
	SegmentCode       string                    `json:"segment_code"`
	CalculatedAt      time.Time                 `json:"calculated_at"`
}

// PriceSnapshotResponse represents the response for price snapshot data
type PriceSnapshotResponse struct {
	*pricing.PriceSnapshot `json:",inline"`
}

// CreatePriceSnapshotResponse carries the persisted snapshot together with
// the full resolution result it was built from
type CreatePriceSnapshotResponse struct {
	Snapshot *PriceSnapshotResponse `json:"snapshot"`
	Result   *PricingResult         `json:"result"`
}

// ListPriceSnapshotsResponse represents the response for listing snapshots
type ListPriceSnapshotsResponse = types.ListResponse[*PriceSnapshotResponse]

// CalculationLogResponse represents one audit row of a snapshot
type CalculationLogResponse struct {
	*pricing.CalculationLog `json:",inline"`
}

// ListCalculationLogsResponse represents a snapshot's ordered audit rows
type ListCalculationLogsResponse struct {
	Items []*CalculationLogResponse `json:"items"`
	Total int                       `json:"total"`
}
