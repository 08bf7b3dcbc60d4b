package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/httpclient"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/pubsub"
	pubsubRouter "github.com/printprice/printprice/internal/pubsub/router"
	"github.com/printprice/printprice/internal/types"
	"github.com/printprice/printprice/internal/webhook/payload"
	"github.com/samber/lo"
)

// Handler consumes webhook events off the topic and delivers them to tenant
// endpoints.
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub  pubsub.PubSub
	config  *config.Webhook
	factory payload.PayloadBuilderFactory
	client  httpclient.Client
	logger  *logger.Logger
}

func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	factory payload.PayloadBuilderFactory,
	client httpclient.Client,
	logger *logger.Logger,
) (Handler, error) {
	return &handler{
		pubSub:  pubSub,
		config:  &cfg.Webhook,
		factory: factory,
		client:  client,
		logger:  logger,
	}, nil
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"webhook_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

// processMessage decodes one queued event and hands it to delivery. Returning
// an error triggers the router's retry policy, so unrecoverable problems are
// swallowed here after logging.
func (h *handler) processMessage(msg *message.Message) error {
	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	// Builders call back into services, which need the publisher's identity
	// on the context.
	ctx := types.SetTenantID(msg.Context(), event.TenantID)
	ctx = types.SetUserID(ctx, event.UserID)

	tenantCfg, ok := h.tenantConfig(&event, msg.UUID)
	if !ok {
		return nil
	}

	return h.deliver(ctx, &event, tenantCfg, msg.UUID)
}

// tenantConfig resolves the delivery settings for the event's tenant. The
// second return is false when the event should be silently dropped: unknown
// tenant, webhooks switched off, or the event excluded by the tenant.
func (h *handler) tenantConfig(event *types.WebhookEvent, messageUUID string) (*config.TenantWebhookConfig, bool) {
	tenantCfg, ok := h.config.Tenants[event.TenantID]
	if !ok {
		h.logger.Warnw("tenant webhook config not found",
			"tenant_id", event.TenantID,
			"message_uuid", messageUUID,
		)
		return nil, false
	}

	if !tenantCfg.Enabled {
		h.logger.Debugw("webhooks disabled for tenant",
			"tenant_id", event.TenantID,
			"message_uuid", messageUUID,
		)
		return nil, false
	}

	if lo.Contains(tenantCfg.ExcludedEvents, event.EventName) {
		h.logger.Debugw("event excluded for tenant",
			"tenant_id", event.TenantID,
			"event", event.EventName,
		)
		return nil, false
	}

	return &tenantCfg, true
}

// deliver hydrates the external payload and posts it to the tenant endpoint.
// Errors propagate so the router can retry transient delivery failures.
func (h *handler) deliver(ctx context.Context, event *types.WebhookEvent, tenantCfg *config.TenantWebhookConfig, messageUUID string) error {
	builder, err := h.factory.GetBuilder(event.EventName)
	if err != nil {
		return err
	}

	webhookPayload, err := builder.BuildPayload(ctx, event.EventName, event.Payload)
	if err != nil {
		return err
	}

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     tenantCfg.Endpoint,
		Headers: tenantCfg.Headers,
		Body:    webhookPayload,
	})
	if err != nil {
		h.logger.Errorw("webhook delivery failed",
			"error", err,
			"message_uuid", messageUUID,
			"tenant_id", event.TenantID,
			"event", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook delivered",
		"message_uuid", messageUUID,
		"tenant_id", event.TenantID,
		"event", event.EventName,
		"status_code", resp.StatusCode,
	)

	return nil
}
