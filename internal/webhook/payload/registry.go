package payload

import (
	"context"
	"encoding/json"

	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/service"
	"github.com/printprice/printprice/internal/types"
)

// PayloadBuilder turns an internal event payload into the document delivered
// to tenant endpoints. eventType is passed through so one builder can serve
// several related events.
type PayloadBuilder interface {
	BuildPayload(ctx context.Context, eventType string, data json.RawMessage) (json.RawMessage, error)
}

// Services bundles the service dependencies available to payload builders.
type Services struct {
	PricingService service.PricingService
}

// NewServices wires the service handles builders hydrate payloads from.
func NewServices(pricingService service.PricingService) *Services {
	return &Services{PricingService: pricingService}
}

// PayloadBuilderFactory resolves the builder registered for an event type.
type PayloadBuilderFactory interface {
	GetBuilder(eventType string) (PayloadBuilder, error)
}

type builderRegistry struct {
	builders map[string]PayloadBuilder
}

// NewPayloadBuilderFactory registers one builder per supported event type.
// Builders are stateless beyond their service handles, so they are
// constructed once and shared.
func NewPayloadBuilderFactory(services *Services) PayloadBuilderFactory {
	return &builderRegistry{
		builders: map[string]PayloadBuilder{
			types.WebhookEventPriceSnapshotCreated: NewPriceSnapshotPayloadBuilder(services),
			types.WebhookEventPricingDiscrepancy:   NewPricingDiscrepancyPayloadBuilder(services),
		},
	}
}

func (r *builderRegistry) GetBuilder(eventType string) (PayloadBuilder, error) {
	b, ok := r.builders[eventType]
	if !ok {
		return nil, ierr.NewError("no payload builder registered for event type").
			WithReportableDetails(map[string]any{"event_type": eventType}).
			Mark(ierr.ErrInvalidOperation)
	}
	return b, nil
}
