package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher pushes board events onto per-board pub/sub channels so
// the live-connection gateway can fan them out to connected viewers.
type RedisPublisher struct {
	client        *redis.Client
	channelPrefix string
}

// NewRedisPublisher creates a publisher using the given client.
func NewRedisPublisher(client *redis.Client, channelPrefix string) *RedisPublisher {
	return &RedisPublisher{client: client, channelPrefix: channelPrefix}
}

type wirePayload struct {
	Type     EventType `json:"type"`
	EntityID string    `json:"entityId"`
}

// Publish sends the event to the board's channel. Delivery is
// at-most-best-effort; the caller treats errors as non-fatal.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	payload, err := json.Marshal(wirePayload{Type: event.Type, EntityID: event.EntityID})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channelPrefix+event.BoardID, payload).Err()
}
