// Package pubsub abstracts the message transport behind webhook delivery.
package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/printprice/printprice/internal/logger"
)

// Publisher pushes messages onto a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Close() error
}

// Subscriber consumes messages from a topic until ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// PubSub is both ends of a message transport. The webhook pipeline publishes
// through it and the delivery router subscribes to it; tests swap in an
// in-memory double.
type PubSub interface {
	Publisher
	Subscriber
}

// NewLoggerAdapter bridges watermill's internal logging onto our zap logger
// so transport logs carry the same structure as the rest of the process.
func NewLoggerAdapter(log *logger.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{log: log}
}

type loggerAdapter struct {
	log    *logger.Logger
	fields watermill.LogFields
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Errorw(msg, a.keyvals(fields, "error", err)...)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Infow(msg, a.keyvals(fields)...)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.keyvals(fields)...)
}

// Trace maps to debug; zap has no trace level.
func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.keyvals(fields)...)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{log: a.log, fields: a.fields.Add(fields)}
}

func (a *loggerAdapter) keyvals(fields watermill.LogFields, extra ...any) []any {
	kv := make([]any, 0, 2*(len(a.fields)+len(fields))+len(extra))
	kv = append(kv, extra...)
	for k, v := range a.fields {
		kv = append(kv, k, v)
	}
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
