package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	ierr "github.com/printprice/printprice/internal/errors"
)

// InMemoryPubSub is a test double for pubsub.PubSub. It records every
// published message per topic so tests can assert on what went out, and
// fans messages out to any subscribers registered before the publish.
type InMemoryPubSub struct {
	mu       sync.RWMutex
	closed   bool
	subs     map[string][]chan *message.Message
	messages map[string][]*message.Message
}

func NewInMemoryPubSub() *InMemoryPubSub {
	return &InMemoryPubSub{
		subs:     make(map[string][]chan *message.Message),
		messages: make(map[string][]*message.Message),
	}
}

func (ps *InMemoryPubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return ierr.NewError("pubsub is closed").Mark(ierr.ErrInvalidOperation)
	}

	ps.messages[topic] = append(ps.messages[topic], msg)

	// Slow subscribers just miss the message; tests that care read the
	// recorded messages instead.
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- msg:
		default:
		}
	}

	return nil
}

func (ps *InMemoryPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil, ierr.NewError("pubsub is closed").Mark(ierr.ErrInvalidOperation)
	}

	ch := make(chan *message.Message, 100)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch, nil
}

func (ps *InMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil
	}
	ps.closed = true

	for _, subs := range ps.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	ps.subs = make(map[string][]chan *message.Message)

	return nil
}

// GetMessages returns the messages published to topic, in publish order.
func (ps *InMemoryPubSub) GetMessages(topic string) []*message.Message {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.messages[topic]
}

// ClearMessages drops the recorded messages, keeping subscriptions.
func (ps *InMemoryPubSub) ClearMessages() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.messages = make(map[string][]*message.Message)
}
