package enginestub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/snauth/authbridge/internal/logging"
	"github.com/snauth/authbridge/internal/models"
	"go.uber.org/zap"
)

const flowChannelPrefix = "authflow:"

// redisBus is a FlowBus backed by Redis pub/sub, letting several stub
// instances serve one flow: the instance holding the startAuth stream and
// the instance receiving the verifyOtp call need not be the same process.
type redisBus struct {
	client *redis.Client
	logger *logging.SafeLogger
}

// NewRedisBus creates a Redis-backed flow bus from a Redis URI.
func NewRedisBus(uri, password string, db int, logger *logging.SafeLogger) (FlowBus, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URI: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DB = db

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisBus{client: client, logger: logger}, nil
}

func (b *redisBus) Publish(ctx context.Context, phone string, resp models.AuthResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode flow response: %w", err)
	}
	return b.client.Publish(ctx, flowChannelPrefix+phone, payload).Err()
}

func (b *redisBus) Subscribe(ctx context.Context, phone string) (<-chan models.AuthResponse, func(), error) {
	sub := b.client.Subscribe(ctx, flowChannelPrefix+phone)

	// Force the subscription onto the wire before the caller proceeds, so a
	// verify arriving right after startAuth is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to flow channel: %w", err)
	}

	out := make(chan models.AuthResponse, 8)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var resp models.AuthResponse
			if err := json.Unmarshal([]byte(msg.Payload), &resp); err != nil {
				b.logger.Warn("dropping malformed flow message", zap.Error(err))
				continue
			}
			select {
			case out <- resp:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { sub.Close() }
	return out, cancel, nil
}
