package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"relay/pkg/envelope"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQPSink struct {
	conn       *amqp.Connection
	mu         sync.Mutex
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// NewAMQPSink dials RabbitMQ and declares a durable topic exchange.
func NewAMQPSink(url string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	return &AMQPSink{conn: conn, ch: ch, exchange: Exchange, routingKey: RoutingKey}, nil
}

func publishing(env envelope.Envelope) (amqp.Publishing, error) {
	body, err := env.Marshal()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal envelope: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         env.Action,
		AppId:        serviceName,
		Timestamp:    time.UnixMilli(env.Timestamp).UTC(),
	}, nil
}

func (s *AMQPSink) Publish(ctx context.Context, env envelope.Envelope) error {
	msg, err := publishing(env)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, msg)
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch.Close()
	return s.conn.Close()
}
