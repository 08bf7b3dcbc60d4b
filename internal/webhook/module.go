package webhook

import (
	"github.com/printprice/printprice/internal/config"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/pubsub"
	"github.com/printprice/printprice/internal/pubsub/memory"
	"github.com/printprice/printprice/internal/service"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/webhook/handler"
	"github.com/printprice/printprice/internal/webhook/payload"
	"github.com/printprice/printprice/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module wires the webhook delivery pipeline: the pubsub transport, the
// publisher the rest of the application emits events through, the payload
// builders, and the delivery handler.
var Module = fx.Options(
	fx.Provide(
		provideWebhookPubSub,
		publisher.NewPublisher,
		handler.NewHandler,
		providePayloadBuilderFactory,
		NewWebhookService,
	),
)

func provideWebhookPubSub(cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	switch cfg.Webhook.PubSub {
	case types.MemoryPubSub:
		return memory.NewPubSub(log), nil
	default:
		return nil, ierr.NewError("unsupported webhook pubsub type").
			WithReportableDetails(map[string]any{"pubsub_type": cfg.Webhook.PubSub}).
			Mark(ierr.ErrValidation)
	}
}

func providePayloadBuilderFactory(pricingService service.PricingService) payload.PayloadBuilderFactory {
	return payload.NewPayloadBuilderFactory(payload.NewServices(pricingService))
}
