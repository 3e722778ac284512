package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements KV on top of a go-redis client.
type Redis struct {
	client redis.Cmdable
}

// NewRedis creates a Redis-backed KV. The client is injected so callers own
// connection setup and tests can point it at an embedded server.
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// SetIfAbsent maps to SETNX. No TTL is attached here; expiration is applied
// by a separate Expire call as a distinct protocol step.
func (r *Redis) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	return r.client.SetNX(ctx, key, value, 0).Result()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.Expire(ctx, key, ttl).Result()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
