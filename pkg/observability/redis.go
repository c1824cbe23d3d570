package observability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelStageEvents is the pub/sub channel stage events are published to.
const ChannelStageEvents = "events.draftgen.stage"

// RedisSink publishes stage events to a Redis pub/sub channel so external
// audit consumers can persist them. The core only emits; retention is the
// operator's concern.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink creates a sink publishing to the given Redis address.
func NewRedisSink(addr string) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Publish sends the event as JSON on the stage-events channel.
func (s *RedisSink) Publish(ctx context.Context, event *StageEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stage event: %w", err)
	}
	if err := s.client.Publish(ctx, ChannelStageEvents, payload).Err(); err != nil {
		return fmt.Errorf("publish stage event: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
