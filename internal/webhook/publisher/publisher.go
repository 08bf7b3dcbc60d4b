package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/printprice/printprice/internal/config"
	ierr "github.com/printprice/printprice/internal/errors"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/pubsub"
	"github.com/printprice/printprice/internal/types"
)

// WebhookPublisher enqueues events onto the webhook topic. Enqueueing is
// in-process and fast; delivery to tenant endpoints happens asynchronously in
// the message router.
type WebhookPublisher interface {
	PublishWebhook(ctx context.Context, event *types.WebhookEvent) error
	Close() error
}

type webhookPublisher struct {
	pubSub pubsub.PubSub
	topic  string
	logger *logger.Logger
}

func NewPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) (WebhookPublisher, error) {
	return &webhookPublisher{
		pubSub: pubSub,
		topic:  cfg.Webhook.Topic,
		logger: logger,
	}, nil
}

func (p *webhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}

	if err := p.pubSub.Publish(ctx, p.topic, msg); err != nil {
		p.logger.Errorw("failed to publish webhook event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
			"tenant_id", event.TenantID,
		)
		return err
	}

	p.logger.Debugw("published webhook event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"tenant_id", event.TenantID,
		"topic", p.topic,
	)

	return nil
}

// encode serializes the event into a watermill message. The event id doubles
// as the message uuid so delivery logs correlate back to the publishing
// request; events without one get a fresh uuid.
func encode(event *types.WebhookEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize webhook event").
			Mark(ierr.ErrSystem)
	}

	id := event.ID
	if id == "" {
		id = watermill.NewUUID()
	}

	msg := message.NewMessage(id, payload)
	msg.Metadata.Set("tenant_id", event.TenantID)
	return msg, nil
}

func (p *webhookPublisher) Close() error {
	return p.pubSub.Close()
}
