package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the fallback store with a Redis KV. Keys are written
// without expiry: the store holds "the last known-good payload", not a
// freshness-bounded cache.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis connects and pings the server.
func NewRedis(redisURL, password string, logger *slog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opt.Password = password
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{
		client: client,
		logger: logger.With("component", "fallback_store"),
	}, nil
}

func redisKey(kind string) string {
	return "fallback:" + kind
}

// Get returns the stored payload, or (nil, nil) when absent.
func (r *Redis) Get(ctx context.Context, kind string) ([]byte, error) {
	payload, err := r.client.Get(ctx, redisKey(kind)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	return payload, nil
}

// Put stores the payload without expiry.
func (r *Redis) Put(ctx context.Context, kind string, payload []byte) error {
	if err := r.client.Set(ctx, redisKey(kind), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	r.logger.Debug("payload_stored", "kind", kind, "size_bytes", len(payload))
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
