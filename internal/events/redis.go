package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events as JSON on a Redis Pub/Sub channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
