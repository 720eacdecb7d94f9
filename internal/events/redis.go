package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/haritsetu/backend/internal/config"
)

// RedisPublisher publishes events as JSON on a single pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Connect returns a RedisPublisher when an address is configured and a
// NopPublisher otherwise.
func Connect(ctx context.Context, cfg config.RedisConfig) (Publisher, error) {
	if cfg.Addr == "" {
		return NopPublisher{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect Redis: %w", err)
	}
	return NewRedisPublisher(rdb, cfg.Channel), nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
