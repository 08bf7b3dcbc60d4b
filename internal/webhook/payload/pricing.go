package payload

import (
	"context"
	"encoding/json"
	"fmt"

	ierr "github.com/printprice/printprice/internal/errors"
	webhookDto "github.com/printprice/printprice/internal/webhook/dto"
)

type PriceSnapshotPayloadBuilder struct {
	services *Services
}

func NewPriceSnapshotPayloadBuilder(services *Services) PayloadBuilder {
	return &PriceSnapshotPayloadBuilder{
		services: services,
	}
}

// BuildPayload builds the webhook payload for price snapshot events. The
// internal event only names the snapshot; the full record is loaded here so
// subscribers receive what is currently persisted, not what was computed at
// publish time.
func (b *PriceSnapshotPayloadBuilder) BuildPayload(ctx context.Context, eventType string, data json.RawMessage) (json.RawMessage, error) {
	var parsedPayload webhookDto.InternalPriceSnapshotEvent

	err := json.Unmarshal(data, &parsedPayload)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to unmarshal price snapshot event payload").
			Mark(ierr.ErrInvalidOperation)
	}

	snapshotID, tenantID := parsedPayload.SnapshotID, parsedPayload.TenantID
	if snapshotID == "" || tenantID == "" {
		return nil, ierr.NewError("invalid data type for price snapshot event").
			WithHint("Please provide a valid snapshot ID and tenant ID").
			WithReportableDetails(map[string]any{
				"expected": "string",
				"got":      fmt.Sprintf("%T", data),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	snapshot, err := b.services.PricingService.GetPriceSnapshot(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	payload := webhookDto.NewPriceSnapshotWebhookPayload(snapshot, eventType)

	return json.Marshal(payload)
}

type PricingDiscrepancyPayloadBuilder struct {
	services *Services
}

func NewPricingDiscrepancyPayloadBuilder(services *Services) PayloadBuilder {
	return &PricingDiscrepancyPayloadBuilder{
		services: services,
	}
}

// BuildPayload builds the webhook payload for pricing discrepancy events.
// Discrepancies are point-in-time observations with nothing to hydrate, so
// the internal event is delivered as reported.
func (b *PricingDiscrepancyPayloadBuilder) BuildPayload(ctx context.Context, eventType string, data json.RawMessage) (json.RawMessage, error) {
	var parsedPayload webhookDto.InternalPricingDiscrepancyEvent

	err := json.Unmarshal(data, &parsedPayload)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unable to unmarshal pricing discrepancy event payload").
			Mark(ierr.ErrInvalidOperation)
	}

	if parsedPayload.TraceID == "" || parsedPayload.TenantID == "" {
		return nil, ierr.NewError("invalid data type for pricing discrepancy event").
			WithHint("Please provide a valid trace ID and tenant ID").
			WithReportableDetails(map[string]any{
				"expected": "string",
				"got":      fmt.Sprintf("%T", data),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	payload := webhookDto.NewPricingDiscrepancyWebhookPayload(&parsedPayload, eventType)

	return json.Marshal(payload)
}
