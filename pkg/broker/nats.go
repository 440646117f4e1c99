package broker

import (
	"context"
	"fmt"

	"relay/pkg/envelope"

	"github.com/nats-io/nats.go"
)

type NATSSink struct {
	conn    *nats.Conn
	subject string
}

func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(url, nats.Name("relay"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSSink{conn: conn, subject: Subject}, nil
}

func (s *NATSSink) Publish(ctx context.Context, env envelope.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return s.conn.Publish(s.subject, data)
}

func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
