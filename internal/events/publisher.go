// Package events publishes batch run events to a Redis stream consumed
// by the dashboard outside this process.
package events

import (
	"context"
	"fmt"

	"eshop/mapper/internal/domain/event"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, ev event.Event) (string, error) // Returns message ID
}

type RedisPublisher struct {
	redisClient  *redis.Client
	streamPrefix string
}

func NewRedisPublisher(redisClient *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient:  redisClient,
		streamPrefix: "mapper:stream:",
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev event.Event) (string, error) {
	eventType := ev.EventType()
	streamName := p.streamPrefix + eventType

	eventValue, err := ev.EventValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	messageID, err := p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"event_type": eventType,
			"event_data": string(eventValue),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("failed to add event to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Published %s to stream %s with message ID: %s", eventType, streamName, messageID)
	return messageID, nil
}
