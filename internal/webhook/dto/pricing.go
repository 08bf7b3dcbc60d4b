package webhookDto

import (
	"github.com/printprice/printprice/internal/api/dto"
	"github.com/shopspring/decimal"
)

// InternalPriceSnapshotEvent is the internal payload for snapshot webhook
// events. It carries ids only; the webhook handler hydrates the full snapshot
// before delivery so subscribers always see current data.
type InternalPriceSnapshotEvent struct {
	SnapshotID string `json:"snapshot_id"`
	OrderID    string `json:"order_id"`
	TenantID   string `json:"tenant_id"`
}

// InternalPricingDiscrepancyEvent is the internal payload for
// pricing.discrepancy events, emitted when a client supplied estimate differs
// from the server computed total. The trace id also appears in the warning
// log line so support can correlate the two.
type InternalPricingDiscrepancyEvent struct {
	TraceID       string          `json:"trace_id"`
	ProductID     string          `json:"product_id"`
	OrderID       string          `json:"order_id,omitempty"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	ComputedTotal decimal.Decimal `json:"computed_total"`
	TenantID      string          `json:"tenant_id"`
}

type PriceSnapshotWebhookPayload struct {
	EventType string                     `json:"event_type"`
	Snapshot  *dto.PriceSnapshotResponse `json:"snapshot"`
}

func NewPriceSnapshotWebhookPayload(snapshot *dto.PriceSnapshotResponse, eventType string) *PriceSnapshotWebhookPayload {
	return &PriceSnapshotWebhookPayload{EventType: eventType, Snapshot: snapshot}
}

type PricingDiscrepancyWebhookPayload struct {
	EventType   string                           `json:"event_type"`
	Discrepancy *InternalPricingDiscrepancyEvent `json:"discrepancy"`
}

func NewPricingDiscrepancyWebhookPayload(event *InternalPricingDiscrepancyEvent, eventType string) *PricingDiscrepancyWebhookPayload {
	return &PricingDiscrepancyWebhookPayload{EventType: eventType, Discrepancy: event}
}
