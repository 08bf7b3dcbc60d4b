package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/pubsub"
)

// PubSub is the in-process transport behind webhook delivery, backed by
// watermill's gochannel. Persistence keeps events published before the
// router starts from being dropped.
type PubSub struct {
	channel *gochannel.GoChannel
}

func NewPubSub(log *logger.Logger) pubsub.PubSub {
	return &PubSub{
		channel: gochannel.NewGoChannel(
			gochannel.Config{
				Persistent:          true,
				OutputChannelBuffer: 100,
			},
			pubsub.NewLoggerAdapter(log),
		),
	}
}

func (p *PubSub) Publish(_ context.Context, topic string, msg *message.Message) error {
	return p.channel.Publish(topic, msg)
}

func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.channel.Subscribe(ctx, topic)
}

// Close is a no-op; the channel serves the whole process lifetime and the
// router closes its own subscriptions on shutdown.
func (p *PubSub) Close() error {
	return nil
}
