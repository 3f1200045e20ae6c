package bus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis is a Bus over a Redis pub/sub channel.
type Redis struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

func NewRedis(client redis.UniversalClient, channel string, logger *slog.Logger) *Redis {
	return &Redis{client: client, channel: channel, logger: logger}
}

func (r *Redis) Publish(ctx context.Context, change RoleChange) error {
	payload, err := Encode(change)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish role change: %w", err)
	}
	return nil
}

// Subscribe waits for the subscription to be confirmed before returning so
// no change published afterwards is missed.
func (r *Redis) Subscribe(ctx context.Context) (<-chan RoleChange, error) {
	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	out := make(chan RoleChange, 64)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				change, err := Decode([]byte(msg.Payload))
				if err != nil {
					r.logger.WarnContext(ctx, "discarding malformed role change",
						"channel", r.channel,
						"error", err,
					)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
