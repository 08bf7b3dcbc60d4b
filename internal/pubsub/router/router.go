package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/pubsub"
	sentryService "github.com/printprice/printprice/internal/sentry"
)

// Router wraps the watermill router with the middleware stack webhook
// delivery runs under: panic recovery, correlation ids, bounded exponential
// retry and a poison queue for messages that exhaust their retries.
type Router struct {
	router *message.Router
	logger *logger.Logger
	sentry *sentryService.Service
}

// NewRouter builds the router from the webhook retry settings.
func NewRouter(cfg *config.Configuration, logger *logger.Logger, sentry *sentryService.Service) (*Router, error) {
	wmLogger := pubsub.NewLoggerAdapter(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(newDLQ(logger), "webhooks_dlq")
	if err != nil {
		return nil, err
	}

	// Poison queue sits outermost so it only sees errors that survived the
	// retry middleware.
	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          cfg.Webhook.MaxRetries,
			InitialInterval:     cfg.Webhook.InitialInterval,
			MaxInterval:         cfg.Webhook.MaxInterval,
			Multiplier:          cfg.Webhook.Multiplier,
			MaxElapsedTime:      cfg.Webhook.MaxElapsedTime,
			RandomizationFactor: 0.5,
			Logger:              wmLogger,
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying message",
					"retry_number", retryNum,
					"max_retries", cfg.Webhook.MaxRetries,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		sentry: sentry,
	}, nil
}

// AddNoPublishHandler registers a consume-only handler. Failures that no
// retry can fix are logged and acked so the retry middleware only sees
// transient ones.
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
	middlewares ...message.HandlerMiddleware,
) {
	handler := r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err == nil {
				return nil
			}

			r.sentry.CaptureException(err)
			r.logger.Errorw("handler failed",
				"error", err,
				"correlation_id", middleware.MessageCorrelationID(msg),
				"message_uuid", msg.UUID,
			)

			if !shouldRetry(r.logger, err) {
				r.logger.Warnw("dropping message after non-retryable error",
					"message_uuid", msg.UUID,
				)
				return nil
			}
			return err
		},
	)

	for _, m := range middlewares {
		handler.AddMiddleware(m)
	}
}

// Run blocks serving messages until the router is closed.
func (r *Router) Run() error {
	r.logger.Info("starting router")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return r.router.Run(ctx)
}

// Close drains handlers and shuts the router down.
func (r *Router) Close() error {
	r.logger.Info("closing router")
	return r.router.Close()
}

// newDLQ backs the poison queue. In-memory for now; nothing consumes it
// beyond inspection in tests.
func newDLQ(log *logger.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{Persistent: false},
		pubsub.NewLoggerAdapter(log),
	)
}
