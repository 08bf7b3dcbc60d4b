package webhook

import (
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
	pubsubRouter "github.com/printprice/printprice/internal/pubsub/router"
	"github.com/printprice/printprice/internal/webhook/handler"
	"github.com/printprice/printprice/internal/webhook/publisher"
)

// WebhookService ties the publishing and delivery halves together and owns
// their lifecycle.
type WebhookService struct {
	enabled   bool
	publisher publisher.WebhookPublisher
	handler   handler.Handler
	logger    *logger.Logger
}

func NewWebhookService(
	cfg *config.Configuration,
	publisher publisher.WebhookPublisher,
	handler handler.Handler,
	logger *logger.Logger,
) *WebhookService {
	return &WebhookService{
		enabled:   cfg.Webhook.Enabled,
		publisher: publisher,
		handler:   handler,
		logger:    logger,
	}
}

// RegisterHandler attaches the delivery handler to the message router. When
// webhooks are disabled the router runs without a webhook subscription and
// published events are dropped by the transport.
func (s *WebhookService) RegisterHandler(router *pubsubRouter.Router) {
	if !s.enabled {
		s.logger.Info("webhook delivery disabled")
		return
	}

	s.handler.RegisterHandler(router)
	s.logger.Info("webhook handler registered")
}

// Close shuts down the publisher and the pubsub transport behind it.
func (s *WebhookService) Close() error {
	if err := s.publisher.Close(); err != nil {
		s.logger.Errorw("failed to close webhook publisher", "error", err)
		return err
	}
	return nil
}
