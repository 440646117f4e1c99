// Package broker republishes accepted status events to an external message
// broker. It only forwards; nothing is consumed back.
package broker

import (
	"context"
	"time"

	"relay/pkg/envelope"
	"relay/pkg/models"

	"go.uber.org/zap"
)

const (
	Subject    = "relay.webhook-event"
	Channel    = "relay:webhook-event"
	Exchange   = "relay.events"
	RoutingKey = "webhook.status"

	serviceName    = "relay"
	publishTimeout = 2 * time.Second
)

type Sink interface {
	Publish(ctx context.Context, env envelope.Envelope) error
	Close() error
}

// Forwarder is an event bus subscriber that hands every notification to a sink.
// Failures are logged and dropped.
type Forwarder struct {
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger
}

func NewForwarder(sink Sink, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		sink:    sink,
		timeout: publishTimeout,
		logger:  logger.With(zap.String("component", "forwarder")),
	}
}

func (f *Forwarder) OnWebhookEvent(n models.Notification) {
	env, err := envelope.NewEvent(envelope.ActionWebhookEvent, serviceName, n)
	if err != nil {
		f.logger.Error("build envelope", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.sink.Publish(ctx, env); err != nil {
		f.logger.Warn("publish dropped", zap.String("envelope_id", env.ID), zap.Error(err))
	}
}
