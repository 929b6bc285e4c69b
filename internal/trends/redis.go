package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"resume-insights/internal/contract"
	"resume-insights/internal/shared/telemetry"
)

// DefaultChannel is the pub/sub channel trend points are fanned out on.
const DefaultChannel = "resume-insights:trend-points"

type envelope struct {
	UserID string              `json:"userId"`
	Point  contract.TrendPoint `json:"point"`
}

// RedisRelay publishes trend points to Redis and relays every point seen on the channel,
// including its own, into the local registry. Each API instance runs one relay so a
// subscriber connected to any instance sees points produced by all of them.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   *Registry
}

func NewRedisRelay(client *redis.Client, channel string, local *Registry) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel, local: local}
}

// Publish sends point to every instance.
func (r *RedisRelay) Publish(ctx context.Context, userID string, point contract.TrendPoint) error {
	payload, err := json.Marshal(envelope{UserID: userID, Point: point})
	if err != nil {
		return fmt.Errorf("encode trend point: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish trend point: %w", err)
	}
	return nil
}

// Run relays channel messages into the local registry until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	telemetry.Info("trends.relay.subscribed", map[string]any{"channel": r.channel})

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.New("trend relay subscription closed")
			}
			if err := r.deliver(msg.Payload); err != nil {
				telemetry.Warn("trends.relay.bad_message", map[string]any{"channel": r.channel, "error": err.Error()})
			}
		}
	}
}

func (r *RedisRelay) deliver(payload string) error {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return err
	}
	if env.UserID == "" {
		return errors.New("trend message without user")
	}
	r.local.Publish(env.UserID, env.Point)
	return nil
}
