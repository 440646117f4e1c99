package broker

import (
	"context"

	"relay/pkg/envelope"

	"github.com/redis/go-redis/v9"
)

type RedisSink struct {
	rdb     *redis.Client
	channel string
}

func NewRedisSink(rdb *redis.Client) *RedisSink {
	return &RedisSink{rdb: rdb, channel: Channel}
}

func (s *RedisSink) Publish(ctx context.Context, env envelope.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, s.channel, data).Err()
}

// Close is a no-op: the client is shared with the cache and closed by its owner.
func (s *RedisSink) Close() error {
	return nil
}
